package model

type Country struct {
	ID        string   `json:"-" bson:"_id,omitempty"`
	Name      string   `json:"name" bson:"name"`
	Capital   string   `json:"capital" bson:"capital"`
	Code      string   `json:"code" bson:"code"`
	ISO3      string   `json:"iso3" bson:"iso3"`
	PhoneCode string   `json:"phone_code" bson:"phone_code"`
	Region    string   `json:"region" bson:"region"`
	Subregion string   `json:"subregion" bson:"subregion"`
	TLD       string   `json:"tld" bson:"tld"`
	Latitude  float64  `json:"latitude" bson:"latitude"`
	Longitude float64  `json:"longitude" bson:"longitude"`
	Currency  Currency `json:"currency" bson:"currency"`
	Flags     Flag     `json:"flags" bson:"flags"`
	States    []State  `json:"states,omitempty" bson:"states,omitempty"`
	Cities    []City   `json:"cities,omitempty" bson:"cities,omitempty"`
}

type State struct {
	Name        string  `json:"name" bson:"name"`
	Code        string  `json:"code" bson:"code"`
	CountryCode string  `json:"country_code" bson:"country_code"`
	Latitude    float64 `json:"latitude" bson:"latitude"`
	Longitude   float64 `json:"longitude" bson:"longitude"`
}

type City struct {
	Name        string  `json:"name" bson:"name"`
	StateCode   string  `json:"state_code" bson:"state_code"`
	CountryCode string  `json:"country_code" bson:"country_code"`
	Latitude    float64 `json:"latitude" bson:"latitude"`
	Longitude   float64 `json:"longitude" bson:"longitude"`
}

type Currency struct {
	Symbol string `json:"symbol" bson:"symbol"`
	Code   string `json:"code" bson:"code"`
	Name   string `json:"name" bson:"name"`
}

type Flag struct {
	Ico string `json:"ico" bson:"ico"`
	Alt string `json:"alt" bson:"alt"`
	PNG string `json:"png" bson:"png"`
	SVG string `json:"svg" bson:"svg"`
}
