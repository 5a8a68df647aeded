package model

import (
	"database/sql"
	"time"
)

const TableToken = "tokens"

type Token struct {
	// Numeric id assigned by the contract, never reused
	TokenId int64 `gorm:"primaryKey; not null; comment:Token id from the contract's id space"`

	Status TokenStatus `gorm:"not null; type:token_status; comment:Stage of the reveal pipeline"`

	AuthorId int64  `gorm:"not null; comment:Author whose prompt is used for generation"`
	Author   Author // Can be preloaded by gorm, but isn't by default.

	// Filled in progressively as the token advances
	ImageUrl    sql.NullString `gorm:"comment:Url of the generated image"`
	ImageCid    sql.NullString `gorm:"comment:Content id of the pinned image"`
	MetadataCid sql.NullString `gorm:"comment:Content id of the pinned metadata"`

	// Counted when an attempt starts, not when it fails, so a token that
	// succeeds on its last permitted try shows the full attempt count.
	// Bounded by the stage's configured max.
	GenerationAttempts int `gorm:"not null; default:0"`
	UploadAttempts     int `gorm:"not null; default:0"`

	// Set only when the token reaches the failed status
	GenerationError sql.NullString

	// Hash of the confirmed transaction that revealed this token's batch
	RevealTxHash sql.NullString

	// Set while a worker holds the token, cleared on every stage transition.
	// A claim older than the stage's retry-after is considered abandoned.
	ClaimedAt sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Token) TableName() string {
	return TableToken
}
