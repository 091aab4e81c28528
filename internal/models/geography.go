package models

// Country is a reference row for event locations.
type Country struct {
	BaseModel

	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Code string `gorm:"uniqueIndex;size:2;not null" json:"code"`

	Cities []City `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE" json:"cities,omitempty"`
}

// City belongs to a country.
type City struct {
	BaseModel

	Name      string   `gorm:"not null;index:idx_cities_country_name,unique" json:"name"`
	CountryID string   `gorm:"type:uuid;not null;index:idx_cities_country_name,unique" json:"country_id"`
	Country   *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
}
