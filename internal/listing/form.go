package listing

// Form carries every scalar field of the property wizard. Validation
// tags cover step-local checks; the step subsets live in wizard.go.
type Form struct {
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,max=150"`
	Rooms       *int    `json:"rooms,omitempty" validate:"omitempty,gte=1,lte=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`

	Amount          int64  `json:"amount" validate:"required,gt=0"`
	Currency        string `json:"currency" validate:"required,iso4217"`
	SecurityDeposit *int64 `json:"security_deposit,omitempty" validate:"omitempty,gte=0"`

	Duration     int      `json:"duration" validate:"required,gt=0"`
	DurationUnit string   `json:"duration_unit" validate:"required,durationunit"`
	Amenities    []string `json:"amenities,omitempty" validate:"omitempty,max=20"`

	CountryCode string `json:"country_code" validate:"required,max=8"`
	StateCode   string `json:"state_code" validate:"required,max=16"`
	CityCode    string `json:"city_code" validate:"required,max=16"`
}

// FieldPatch is a partial update merged into a draft's form. Nil means
// "leave as is"; a pointer to the zero value clears the field.
type FieldPatch struct {
	CategoryID  *int64  `json:"category_id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Rooms       *int    `json:"rooms,omitempty"`
	Description *string `json:"description,omitempty"`

	Amount          *int64  `json:"amount,omitempty"`
	Currency        *string `json:"currency,omitempty"`
	SecurityDeposit *int64  `json:"security_deposit,omitempty"`

	Duration     *int      `json:"duration,omitempty"`
	DurationUnit *string   `json:"duration_unit,omitempty"`
	Amenities    *[]string `json:"amenities,omitempty"`

	CountryCode *string `json:"country_code,omitempty"`
	StateCode   *string `json:"state_code,omitempty"`
	CityCode    *string `json:"city_code,omitempty"`
}
