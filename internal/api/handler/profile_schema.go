package handler

// --- Request types ---

type addressRequest struct {
	CEP      string `json:"cep"      validate:"required,max=10"`
	Street   string `json:"street"   validate:"required,max=100"`
	Number   int    `json:"number"   validate:"gte=0"`
	District string `json:"district" validate:"required,max=100"`
	City     string `json:"city"     validate:"required,max=100"`
	UF       string `json:"uf"       validate:"required,len=2,alpha"`
}

type createClientRequest struct {
	UserID   *uint          `json:"user_id"  validate:"omitempty,gt=0"`
	Name     string         `json:"name"     validate:"required,max=40"`
	Birthday string         `json:"birthday" validate:"required,datetime=2006-01-02"`
	Address  addressRequest `json:"address"`
}

type addressPatchRequest struct {
	CEP      *string `json:"cep"      validate:"omitempty,min=1,max=10"`
	Street   *string `json:"street"   validate:"omitempty,min=1,max=100"`
	Number   *int    `json:"number"   validate:"omitempty,gte=0"`
	District *string `json:"district" validate:"omitempty,min=1,max=100"`
	City     *string `json:"city"     validate:"omitempty,min=1,max=100"`
	UF       *string `json:"uf"       validate:"omitempty,len=2,alpha"`
}

// userPatchRequest updates the identity linked to a profile.
type userPatchRequest struct {
	Password *string `json:"password" validate:"omitempty,min=1"`
}

type updateClientRequest struct {
	Name     *string              `json:"name"     validate:"omitempty,min=1,max=40"`
	Birthday *string              `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Address  *addressPatchRequest `json:"address"`
	User     *userPatchRequest    `json:"user"`
}

type createTransporterRequest struct {
	UserID      *uint  `json:"user_id"      validate:"omitempty,gt=0"`
	Name        string `json:"name"         validate:"required,max=40"`
	Birthday    string `json:"birthday"     validate:"required,datetime=2006-01-02"`
	CNH         string `json:"cnh"          validate:"required,max=20"`
	CategoryCNH string `json:"category_cnh" validate:"required,max=5,alpha"`
}

type updateTransporterRequest struct {
	Name        *string           `json:"name"         validate:"omitempty,min=1,max=40"`
	Birthday    *string           `json:"birthday"     validate:"omitempty,datetime=2006-01-02"`
	CNH         *string           `json:"cnh"          validate:"omitempty,min=1,max=20"`
	CategoryCNH *string           `json:"category_cnh" validate:"omitempty,min=1,max=5,alpha"`
	User        *userPatchRequest `json:"user"`
}
