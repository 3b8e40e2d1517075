package i18n

import "golang.org/x/text/language"

var tables = map[language.Tag]map[Key]string{
	language.English: {
		Dashboard:      "Dashboard",
		Expenses:       "Expenses",
		ExpenseLabel:   "Expense",
		IncomeLabel:    "Income",
		Incomes:        "Income",
		Cancel:         "Cancel",
		Delete:         "Delete",
		Amount:         "Amount",
		Description:    "Description",
		Category:       "Category",
		Categories:     "Categories",
		Date:           "Date",
		Balance:        "Balance",
		AddTransaction: "Add Transaction",
		Yes:            "y",
		No:             "n",

		TotalIncome:        "Total Income",
		TotalExpenses:      "Total Expenses",
		ExpensesByCategory: "Expenses by Category",
		IncomeByCategory:   "Income by Category",
		MonthlyTrend:       "Monthly Trend",
		LoadingDashboard:   "Loading dashboard...",
		DashboardError:     "Failed to load dashboard data",
		NoData:             "No data available",
		NoCategoryData:     "No data for this month",

		LoadingExpenses:      "Loading expenses...",
		FailedToLoadExpenses: "Failed to load expenses",
		ExpenseAddError:      "Error adding expense",
		AddExpense:           "Add Expense",
		NoExpenses:           "No expenses recorded yet",
		StartTrackingExpense: "Start tracking your expenses by adding your first entry",
		DeleteExpenseConfirm: "Are you sure you want to delete this expense?",
		DeleteExpenseError:   "Error deleting expense",

		LoadingIncome:       "Loading income...",
		FailedToLoadIncome:  "Failed to load income",
		IncomeAddError:      "Error adding income",
		AddIncome:           "Add Income",
		NoIncome:            "No income recorded yet",
		StartTrackingIncome: "Start tracking your income by adding your first entry",
		DeleteIncomeConfirm: "Are you sure you want to delete this income?",
		DeleteIncomeError:   "Error deleting income",

		AmountInvalid:       "Amount must be greater than zero",
		DescriptionRequired: "Description is required",
		DescriptionTooLong:  "Description must be at most 200 characters",
		CategoryRequired:    "Category is required",
		CategoryUnknown:     "Category does not exist",
		DateRequired:        "Date is required",
		SelectCategory:      "Select a category",
		EnterDescription:    "Enter transaction description...",
		MalformedRecords:    "Some records were skipped because they are malformed",
	},
	language.Spanish: {
		Dashboard:      "Tablero",
		Expenses:       "Gastos",
		ExpenseLabel:   "Gasto",
		IncomeLabel:    "Ingreso",
		Incomes:        "Ingresos",
		Cancel:         "Cancelar",
		Delete:         "Eliminar",
		Amount:         "Monto",
		Description:    "Descripción",
		Category:       "Categoría",
		Categories:     "Categorías",
		Date:           "Fecha",
		Balance:        "Balance",
		AddTransaction: "Agregar Transacción",
		Yes:            "s",
		No:             "n",

		TotalIncome:        "Ingresos Totales",
		TotalExpenses:      "Gastos Totales",
		ExpensesByCategory: "Gastos por Categoría",
		IncomeByCategory:   "Ingresos por Categoría",
		MonthlyTrend:       "Tendencia Mensual",
		LoadingDashboard:   "Cargando tablero...",
		DashboardError:     "Error al cargar los datos del tablero",
		NoData:             "No hay datos disponibles",
		NoCategoryData:     "No hay datos para este mes",

		LoadingExpenses:      "Cargando gastos...",
		FailedToLoadExpenses: "Error al cargar los gastos",
		ExpenseAddError:      "Error al agregar gastos",
		AddExpense:           "Agregar Gasto",
		NoExpenses:           "No hay gastos registrados aún",
		StartTrackingExpense: "Comienza a registrar tus gastos agregando tu primer gasto",
		DeleteExpenseConfirm: "¿Estás seguro de que deseas eliminar este gasto?",
		DeleteExpenseError:   "Error al eliminar el gasto",

		LoadingIncome:       "Cargando ingresos...",
		FailedToLoadIncome:  "Error al cargar los ingresos",
		IncomeAddError:      "Error al agregar ingresos",
		AddIncome:           "Agregar Ingreso",
		NoIncome:            "No hay ingresos registrados aún",
		StartTrackingIncome: "Comienza a registrar tus ingresos agregando tu primer ingreso",
		DeleteIncomeConfirm: "¿Estás seguro de que deseas eliminar este ingreso?",
		DeleteIncomeError:   "Error al eliminar el ingreso",

		AmountInvalid:       "El monto debe ser mayor que cero",
		DescriptionRequired: "La descripción es obligatoria",
		DescriptionTooLong:  "La descripción debe tener como máximo 200 caracteres",
		CategoryRequired:    "La categoría es obligatoria",
		CategoryUnknown:     "La categoría no existe",
		DateRequired:        "La fecha es obligatoria",
		SelectCategory:      "Selecciona una categoría",
		EnterDescription:    "Ingresa la descripción de la transacción...",
		MalformedRecords:    "Se omitieron registros con datos inválidos",
	},
}
