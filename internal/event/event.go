// Package event holds the static reference data of the competition: dates,
// venue and the per-category movement standards shown on the landing page.
package event

import "time"

const (
	Name     = "DARE LEAGUE"
	Year     = 2026
	Location = "Box Coach Pipe Rubio · La Merced, Cali"
)

var StartDate = time.Date(2026, time.July, 18, 8, 0, 0, 0, time.FixedZone("America/Bogota", -5*60*60))

// Prize is one podium payout, display only.
type Prize struct {
	Place  int    `json:"place"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type CategoryPrizes struct {
	Category string  `json:"category"`
	Total    string  `json:"total"`
	Prizes   []Prize `json:"prizes"`
}

const PrizeDisclaimer = "Premios sujetos a retenciones legales y cumplimiento de cupos mínimos por categoría."

func Prizes() []CategoryPrizes {
	return []CategoryPrizes{
		{
			Category: "PRINCIPIANTE",
			Total:    "$1.1M",
			Prizes: []Prize{
				{Place: 1, Label: "Campeón", Amount: "$500.000"},
				{Place: 2, Label: "Subcampeón", Amount: "$350.000"},
				{Place: 3, Label: "Tercer Lugar", Amount: "$250.000"},
			},
		},
		{
			Category: "INTERMEDIO",
			Total:    "$1.4M",
			Prizes: []Prize{
				{Place: 1, Label: "Campeón", Amount: "$600.000"},
				{Place: 2, Label: "Subcampeón", Amount: "$450.000"},
				{Place: 3, Label: "Tercer Lugar", Amount: "$350.000"},
			},
		},
	}
}

// Standard is one exercise threshold pair, display only.
type Standard struct {
	Exercise string `json:"exercise"`
	Male     string `json:"male"`
	Female   string `json:"female"`
}

type CategoryInfo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Standards   []Standard `json:"standards"`
}

func Categories() []CategoryInfo {
	return []CategoryInfo{
		{
			ID:          "PRINCIPIANTE",
			Title:       "PRINCIPIANTE",
			Description: "Tu primera vez en el ruedo. Movimientos básicos, intensidad máxima.",
			Standards: []Standard{
				{Exercise: "Pull Ups", Male: "Banda", Female: "Banda"},
				{Exercise: "Snatch", Male: "75 lb", Female: "45 lb"},
				{Exercise: "Clean & Jerk", Male: "95 lb", Female: "55 lb"},
				{Exercise: "Deadlift", Male: "115 lb", Female: "85 lb"},
				{Exercise: "Thrusters", Male: "75 lb", Female: "45 lb"},
				{Exercise: "T2B", Male: "K2E", Female: "K2E"},
				{Exercise: "Dumbbells", Male: "12.5 kg", Female: "7.5 kg"},
			},
		},
		{
			ID:          "INTERMEDIO",
			Title:       "INTERMEDIO",
			Description: "Ya conoces el dolor. Ahora vienes a demostrar dominio técnico.",
			Standards: []Standard{
				{Exercise: "Pull Ups", Male: "Si", Female: "Banda"},
				{Exercise: "Snatch", Male: "95 lb", Female: "55 lb"},
				{Exercise: "Clean & Jerk", Male: "115 lb", Female: "65 lb"},
				{Exercise: "Deadlift", Male: "135 lb", Female: "105 lb"},
				{Exercise: "Thrusters", Male: "95 lb", Female: "55 lb"},
				{Exercise: "T2B", Male: "Si", Female: "Si"},
				{Exercise: "Dumbbells", Male: "15 kg", Female: "10 kg"},
			},
		},
	}
}
