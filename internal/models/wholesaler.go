package models

// Wholesaler links a user account to the inventory it owns.
type Wholesaler struct {
	WholesalerID uint   `json:"WholesalerID" gorm:"column:WholesalerID;primaryKey;autoIncrement"`
	UserID       string `json:"UserID" gorm:"column:UserID;type:varchar(36);uniqueIndex;not null"`
	BusinessName string `json:"BusinessName" gorm:"column:BusinessName;type:varchar(255)"`
}

func (Wholesaler) TableName() string { return "wholesaler" }
