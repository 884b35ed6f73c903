package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Account anchors an external identity to the gateway. Rows are created
// lazily on the first webhook or login exchange and never deleted here.
type Account struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ExternalUserID int64        `gorm:"column:external_user_id;uniqueIndex:ux_accounts_external_user;not null" json:"external_user_id"`
	Email          string       `gorm:"type:text" json:"email,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
