// Package domain holds IP asset DTOs and ports
package domain

// PrepareInput is the request for the storage-only half of the pipeline
type PrepareInput struct {
	ImageData string `json:"image_data" validate:"required"`
	Prompt    string `json:"prompt"     validate:"required,max=1000"`
	Style     string `json:"style"      validate:"omitempty,max=100"`
	Model     string `json:"model"      validate:"omitempty,max=200"`
	Creator   string `json:"creator"    validate:"omitempty,max=200"`
}

// IPMetadataRefs are the minted metadata pointers and hashes
type IPMetadataRefs struct {
	IPMetadataURI   string `json:"ip_metadata_uri"`
	IPMetadataHash  string `json:"ip_metadata_hash"`
	NFTMetadataURI  string `json:"nft_metadata_uri"`
	NFTMetadataHash string `json:"nft_metadata_hash"`
}

// PrepareOutput reports stored content and the refs a mint call would use
type PrepareOutput struct {
	ImageCID    string         `json:"image_cid"`
	MetadataCID string         `json:"metadata_cid"`
	GatewayURL  string         `json:"gateway_url"`
	IPMetadata  IPMetadataRefs `json:"ip_metadata"`
}

// RegisterInput is the request for the full pipeline
type RegisterInput struct {
	ImageData string `json:"image_data" validate:"required"`
	Prompt    string `json:"prompt"     validate:"required,max=1000"`
	Style     string `json:"style"      validate:"omitempty,max=100"`
	Model     string `json:"model"      validate:"omitempty,max=200"`
	Creator   string `json:"creator"    validate:"omitempty,max=200"`
}

// RegistrationView is the wire form of a registration snapshot
type RegistrationView struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	Stage       string `json:"stage,omitempty"`
	ImageCID    string `json:"image_cid,omitempty"`
	MetadataCID string `json:"metadata_cid,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	IPAssetID   string `json:"ip_asset_id,omitempty"`
	TokenID     string `json:"token_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// VerifyInput identifies a broadcast by registration id or tx hash
type VerifyInput struct {
	ID     string `json:"id"      validate:"required_without=TxHash,omitempty,uuid4"`
	TxHash string `json:"tx_hash" validate:"required_without=ID"`
}

// VerifyOutput is one confirmation poll result
type VerifyOutput struct {
	Status    string `json:"status"`
	TxHash    string `json:"tx_hash,omitempty"`
	IPAssetID string `json:"ip_asset_id,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
