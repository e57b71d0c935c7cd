package models

type Customer struct {
	CustomerID uint   `gorm:"column:customer_id;primaryKey;autoIncrement" json:"customer_id"`
	Name       string `gorm:"size:255;not null" json:"name"`
	Email      string `gorm:"size:320;not null" json:"email"`
	Phone      string `gorm:"size:15;not null" json:"phone"`

	// Relations owned by the customer. They give Orders and
	// Customer_Accounts their customer_id foreign keys.
	Account *CustomerAccount `gorm:"foreignKey:CustomerID" json:"-"`
	Orders  []Order          `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Customer) TableName() string { return "Customers" }

// CustomerPatch carries the fields of a partial customer update. Nil
// fields are left untouched.
type CustomerPatch struct {
	Name  *string
	Email *string
	Phone *string
}

func (p CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
}
