package transport

// GenerateRequest is accepted as query parameters (GET) or a JSON body (POST).
type GenerateRequest struct {
	Country string `form:"country" json:"country" validate:"required,max=100"`
	State   string `form:"state" json:"state" validate:"max=100"`
	City    string `form:"city" json:"city" validate:"max=100"`
	Zipcode string `form:"zipcode" json:"zipcode" validate:"max=100"`
}

type GenerateResponse struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	CityState   string  `json:"city_state"`
	Zipcode     *string `json:"zipcode"`
	Country     string  `json:"country"`
	FullAddress string  `json:"full_address"`
}
