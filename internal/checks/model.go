package checks

import "time"

const (
	ModuleContrat = "contrat"
	ModuleFiche   = "fiche"
)

// Check is the durable record of one finished analysis.
type Check struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Module     string    `json:"module"`
	InputFiles []string  `json:"inputFiles"`
	OutputFile string    `json:"outputFile"`
	Result     string    `json:"result"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Summary counts a user's checks by verdict.
type Summary struct {
	Total       int `json:"total"`
	Conforme    int `json:"conforme"`
	NonConforme int `json:"nonConforme"`
}
