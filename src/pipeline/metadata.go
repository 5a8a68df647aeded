package pipeline

import "fmt"

// ERC-721 metadata document pinned for each token
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func NewTokenMetadata(tokenId int64, imageCid string) TokenMetadata {
	return TokenMetadata{
		Name:        fmt.Sprintf("Token #%d", tokenId),
		Description: fmt.Sprintf("Generated artwork for token #%d", tokenId),
		Image:       "ipfs://" + imageCid,
	}
}
