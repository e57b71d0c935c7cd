package models

type Product struct {
	ProductID uint    `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	Name      string  `gorm:"size:255;not null;index" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Stock     int     `gorm:"not null;default:0" json:"stock"`

	OrderProducts []OrderProduct `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string { return "Products" }

type ProductPatch struct {
	Name  *string
	Price *float64
	Stock *int
}

func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
}
