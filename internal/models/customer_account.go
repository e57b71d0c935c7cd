package models

// CustomerAccount holds login credentials for exactly one customer.
type CustomerAccount struct {
	AccountID    uint      `gorm:"column:account_id;primaryKey;autoIncrement" json:"account_id"`
	Username     string    `gorm:"size:255;not null;uniqueIndex:idx_customer_accounts_username" json:"username"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	CustomerID   uint      `gorm:"column:customer_id;not null;uniqueIndex:idx_customer_accounts_customer" json:"customer_id"`
	Customer     *Customer `gorm:"-" json:"customer,omitempty"`
}

func (CustomerAccount) TableName() string { return "Customer_Accounts" }

// CustomerAccountPatch is a partial account update. Password is plaintext
// and gets hashed by the store before it is persisted.
type CustomerAccountPatch struct {
	Username   *string
	Password   *string
	CustomerID *uint
}
