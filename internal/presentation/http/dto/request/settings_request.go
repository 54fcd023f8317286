package request

// UpdateSettingsRequest merges into the store settings; omitted fields are unchanged
type UpdateSettingsRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Address *string `json:"address" binding:"omitempty,max=512"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Logo    *string `json:"logo" binding:"omitempty,max=1024"`
	Color   *string `json:"color"`
	Font    *string `json:"font" binding:"omitempty,max=255"`
}
