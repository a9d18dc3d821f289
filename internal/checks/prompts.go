package checks

import "strings"

const (
	defaultContractType = "de travail"
	payslipPrompt       = "Vérifie si la fiche de paie correspond bien au contrat et identifie toute anomalie, conformement au droit du travail français."
)

// ContractPrompt asks for a conformity review of a contract of the given type (CDI, CDD, ...).
func ContractPrompt(contractType string) string {
	t := strings.TrimSpace(contractType)
	if t == "" {
		t = defaultContractType
	}
	return "Analyse ce contrat " + t + " et indique s'il est conforme au droit du travail français."
}

// PayslipPrompt asks whether a payslip matches its contract.
func PayslipPrompt() string {
	return payslipPrompt
}
