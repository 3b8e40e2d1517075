// Package i18n holds the localisation table and locale-aware formatting.
//
// Callers select messages by Key, never by literal text, so adding a locale
// needs no change outside this package.
package i18n

import "moneyboard/internal/core"

// Key names a localised message.
type Key string

// General labels
const (
	Dashboard      Key = "dashboard"
	Expenses       Key = "expenses"
	ExpenseLabel   Key = "expense"
	IncomeLabel    Key = "income"
	Incomes        Key = "incomes"
	Cancel         Key = "cancel"
	Delete         Key = "delete"
	Amount         Key = "amount"
	Description    Key = "description"
	Category       Key = "category"
	Categories     Key = "categories"
	Date           Key = "date"
	Balance        Key = "balance"
	AddTransaction Key = "add_transaction"
	Yes            Key = "yes"
	No             Key = "no"
)

// Dashboard
const (
	TotalIncome        Key = "total_income"
	TotalExpenses      Key = "total_expenses"
	ExpensesByCategory Key = "expenses_by_category"
	IncomeByCategory   Key = "income_by_category"
	MonthlyTrend       Key = "monthly_trend"
	LoadingDashboard   Key = "loading_dashboard"
	DashboardError     Key = "dashboard_error"
	NoData             Key = "no_data"
	NoCategoryData     Key = "no_category_data"
)

// Expenses
const (
	LoadingExpenses      Key = "loading_expense"
	FailedToLoadExpenses Key = "failed_to_load_expense"
	ExpenseAddError      Key = "expense_error"
	AddExpense           Key = "add_expense"
	NoExpenses           Key = "no_expense"
	StartTrackingExpense Key = "start_tracking_expense"
	DeleteExpenseConfirm Key = "delete_expense"
	DeleteExpenseError   Key = "delete_expense_error"
)

// Income
const (
	LoadingIncome       Key = "loading_income"
	FailedToLoadIncome  Key = "failed_to_load_income"
	IncomeAddError      Key = "income_error"
	AddIncome           Key = "add_income"
	NoIncome            Key = "no_income"
	StartTrackingIncome Key = "start_tracking_income"
	DeleteIncomeConfirm Key = "delete_income"
	DeleteIncomeError   Key = "delete_income_error"
)

// Transaction form
const (
	AmountInvalid       Key = "amount_greater_than_zero"
	DescriptionRequired Key = "description_required"
	DescriptionTooLong  Key = "description_too_long"
	CategoryRequired    Key = "category_required"
	CategoryUnknown     Key = "category_unknown"
	DateRequired        Key = "date_required"
	SelectCategory      Key = "select_a_category"
	EnterDescription    Key = "enter_transaction_description"
	MalformedRecords    Key = "malformed_records"
)

// kindKeys groups the per-collection messages.
type kindKeys struct {
	loading, failedToLoad, addError, add, empty, startTracking, deleteConfirm, deleteError, title Key
}

var byKind = map[core.Kind]kindKeys{
	core.Expense: {
		loading:       LoadingExpenses,
		failedToLoad:  FailedToLoadExpenses,
		addError:      ExpenseAddError,
		add:           AddExpense,
		empty:         NoExpenses,
		startTracking: StartTrackingExpense,
		deleteConfirm: DeleteExpenseConfirm,
		deleteError:   DeleteExpenseError,
		title:         Expenses,
	},
	core.Income: {
		loading:       LoadingIncome,
		failedToLoad:  FailedToLoadIncome,
		addError:      IncomeAddError,
		add:           AddIncome,
		empty:         NoIncome,
		startTracking: StartTrackingIncome,
		deleteConfirm: DeleteIncomeConfirm,
		deleteError:   DeleteIncomeError,
		title:         Incomes,
	},
}

func LoadingKey(k core.Kind) Key       { return byKind[k].loading }
func FailedToLoadKey(k core.Kind) Key  { return byKind[k].failedToLoad }
func AddErrorKey(k core.Kind) Key      { return byKind[k].addError }
func AddKey(k core.Kind) Key           { return byKind[k].add }
func EmptyKey(k core.Kind) Key         { return byKind[k].empty }
func StartTrackingKey(k core.Kind) Key { return byKind[k].startTracking }
func DeleteConfirmKey(k core.Kind) Key { return byKind[k].deleteConfirm }
func DeleteErrorKey(k core.Kind) Key   { return byKind[k].deleteError }
func TitleKey(k core.Kind) Key         { return byKind[k].title }
