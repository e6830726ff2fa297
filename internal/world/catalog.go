package world

import "time"

// ShipClass fixes the combat and cargo characteristics of a hull type.
type ShipClass struct {
	ID            string        `json:"id" yaml:"id"`
	DisplayName   string        `json:"displayName" yaml:"displayName"`
	MaxHull       int           `json:"maxHull" yaml:"maxHull"`
	MaxSpeed      float64       `json:"maxSpeed" yaml:"maxSpeed"`
	ArmorPercent  float64       `json:"armor" yaml:"armor"`
	CargoCapacity int           `json:"cargoCapacity" yaml:"cargoCapacity"`
	CannonCount   int           `json:"cannonCount" yaml:"cannonCount"`
	CannonDamage  int           `json:"cannonDamage" yaml:"cannonDamage"`
	CannonRange   float64       `json:"cannonRange" yaml:"cannonRange"`
	ReloadTime    time.Duration `json:"reloadMs" yaml:"reloadMs"`
}

// Good is a tradable commodity.
type Good struct {
	ID          string  `json:"id" yaml:"id"`
	DisplayName string  `json:"displayName" yaml:"displayName"`
	BasePrice   int     `json:"basePrice" yaml:"basePrice"`
	Fluctuation float64 `json:"fluctuation" yaml:"fluctuation"`
}

// Port is a fixed trading location on the map.
type Port struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	X          float64 `json:"x" yaml:"x"`
	Z          float64 `json:"z" yaml:"z"`
	SafeRadius float64 `json:"safeRadius" yaml:"safeRadius"`
}

// DefaultShipClasses returns the built-in hull catalog, used when the config
// file does not override it.
func DefaultShipClasses() []ShipClass {
	return []ShipClass{
		{
			ID: "sloop", DisplayName: "Sloop",
			MaxHull: 100, MaxSpeed: 6, ArmorPercent: 0, CargoCapacity: 40,
			CannonCount: 2, CannonDamage: 10, CannonRange: 500,
			ReloadTime: 2 * time.Second,
		},
		{
			ID: "brigantine", DisplayName: "Brigantine",
			MaxHull: 160, MaxSpeed: 5, ArmorPercent: 10, CargoCapacity: 80,
			CannonCount: 4, CannonDamage: 10, CannonRange: 550,
			ReloadTime: 2500 * time.Millisecond,
		},
		{
			ID: "galleon", DisplayName: "Galleon",
			MaxHull: 240, MaxSpeed: 4, ArmorPercent: 20, CargoCapacity: 160,
			CannonCount: 6, CannonDamage: 12, CannonRange: 600,
			ReloadTime: 3 * time.Second,
		},
		{
			ID: "man-o-war", DisplayName: "Man-o'-War",
			MaxHull: 320, MaxSpeed: 3, ArmorPercent: 30, CargoCapacity: 120,
			CannonCount: 8, CannonDamage: 14, CannonRange: 650,
			ReloadTime: 3500 * time.Millisecond,
		},
	}
}

// DefaultGoods returns the built-in commodity catalog.
func DefaultGoods() []Good {
	return []Good{
		{ID: "rum", DisplayName: "Rum", BasePrice: 50, Fluctuation: 30},
		{ID: "sugar", DisplayName: "Sugar", BasePrice: 30, Fluctuation: 20},
		{ID: "spices", DisplayName: "Spices", BasePrice: 80, Fluctuation: 40},
		{ID: "silk", DisplayName: "Silk", BasePrice: 120, Fluctuation: 35},
		{ID: "tobacco", DisplayName: "Tobacco", BasePrice: 60, Fluctuation: 25},
		{ID: "gunpowder", DisplayName: "Gunpowder", BasePrice: 100, Fluctuation: 45},
	}
}

// DefaultPorts returns the built-in port layout for the 5000x5000 map.
func DefaultPorts() []Port {
	return []Port{
		{ID: "port-royal", Name: "Port Royal", X: 500, Z: 500, SafeRadius: 200},
		{ID: "tortuga", Name: "Tortuga", X: 4200, Z: 800, SafeRadius: 200},
		{ID: "nassau", Name: "Nassau", X: 2500, Z: 2500, SafeRadius: 200},
		{ID: "havana", Name: "Havana", X: 900, Z: 4100, SafeRadius: 200},
		{ID: "barbados", Name: "Barbados", X: 4400, Z: 4300, SafeRadius: 200},
	}
}
