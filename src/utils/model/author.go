package model

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const TableAuthor = "authors"

type Author struct {
	Id int64 `gorm:"primaryKey"`

	// Creator wallet, stored lower case
	WalletAddress string `gorm:"not null; unique"`

	// Prompt used for every token minted by this wallet
	PromptText string `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Author) TableName() string {
	return TableAuthor
}

// Makes sure the fallback author used by the recovery run exists and returns its id.
// The wallet address is case-normalized before the lookup.
func EnsureDefaultAuthor(ctx context.Context, db *gorm.DB, walletAddress, promptText string) (id int64, err error) {
	author := Author{
		WalletAddress: strings.ToLower(walletAddress),
		PromptText:    promptText,
	}

	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet_address"}},
			DoNothing: true,
		}).
		Create(&author).
		Error
	if err != nil {
		return
	}

	if author.Id != 0 {
		id = author.Id
		return
	}

	// Already existed, the insert was skipped
	err = db.WithContext(ctx).
		Where("wallet_address = ?", author.WalletAddress).
		First(&author).
		Error
	if err != nil {
		return
	}

	id = author.Id
	return
}
