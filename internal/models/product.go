package models

// Product represents a listing owned by a wholesaler.
// Column and JSON names follow the catalog's existing schema.
type Product struct {
	ProductID     uint    `json:"ProductID" gorm:"column:ProductID;primaryKey;autoIncrement"`
	ProductName   string  `json:"ProductName" gorm:"column:ProductName;type:varchar(255);not null"`
	Category      *string `json:"Category" gorm:"column:Category;type:varchar(100);index"`
	Price         float64 `json:"Price" gorm:"column:Price;not null"`
	StockQuantity int     `json:"StockQuantity" gorm:"column:StockQuantity;not null;default:0"`
	WholesalerID  uint    `json:"WholesalerID" gorm:"column:WholesalerID;not null;index"`
	ProductImage  *string `json:"ProductImage" gorm:"column:ProductImage;type:varchar(500)"`
	Description   *string `json:"Description" gorm:"column:Description;type:text"`
	IsActive      bool    `json:"IsActive" gorm:"column:IsActive;not null;default:true"`
}

// TableName pins the table to the catalog's singular name.
func (Product) TableName() string { return "product" }

// ProductSummary is the projection retailers see when browsing a wholesaler.
type ProductSummary struct {
	ProductID     uint    `json:"ProductID" gorm:"column:ProductID"`
	ProductName   string  `json:"ProductName" gorm:"column:ProductName"`
	Category      *string `json:"Category" gorm:"column:Category"`
	Price         float64 `json:"Price" gorm:"column:Price"`
	StockQuantity int     `json:"StockQuantity" gorm:"column:StockQuantity"`
	ProductImage  *string `json:"ProductImage" gorm:"column:ProductImage"`
	WholesalerID  uint    `json:"WholesalerID" gorm:"column:WholesalerID"`
}

// ProductChanges holds the columns an update rewrites.
// ProductImage is only written when non-nil.
type ProductChanges struct {
	ProductName   string
	Category      *string
	Price         float64
	StockQuantity int
	Description   *string
	ProductImage  *string
}

// WriteResult mirrors the metadata returned by an insert.
type WriteResult struct {
	InsertID     uint  `json:"insertId"`
	AffectedRows int64 `json:"affectedRows"`
}
