package store

// Collection keys. The names match the saved state of earlier terminals and
// must not change.
const (
	KeyTables          = "restaurant-tables"
	KeyFloors          = "restaurant-floors"
	KeyTableCategories = "restaurant-table-categories"
	KeyTableConfigs    = "restaurant-table-configs"
	KeyTableHistory    = "restaurant-table-history"
	KeyTableTransfers  = "restaurant-table-transfers"
	KeyCustomers       = "restaurant-customers"
	KeyCustomerOrders  = "restaurant-customer-orders"
	KeyMenu            = "restaurant-menu"
	KeyMenuCategories  = "restaurant-categories"
	KeyPaymentHistory  = "paymentHistory"
)

// AllKeys lists every collection key.
var AllKeys = []string{
	KeyTables,
	KeyFloors,
	KeyTableCategories,
	KeyTableConfigs,
	KeyTableHistory,
	KeyTableTransfers,
	KeyCustomers,
	KeyCustomerOrders,
	KeyMenu,
	KeyMenuCategories,
	KeyPaymentHistory,
}
