package models

import (
	"strings"
	"time"
)

// RawEntry is an unvalidated field map pulled from one HTML row or card
type RawEntry map[string]string

// Get returns the trimmed value of a field and whether it is set
func (e RawEntry) Get(field string) (string, bool) {
	v, ok := e[field]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Raw entry field names, as scraped.
const (
	FieldPartyName        = "nombre_partido"
	FieldLogoURL          = "logo_url"
	FieldRegistrationDate = "fecha_inscripcion"
	FieldLegalAddress     = "direccion_legal"
	FieldPhones           = "telefonos"
	FieldWebsite          = "sitio_web"
	FieldEmail            = "email_contacto"
	FieldTitular          = "personero_titular"
	FieldAlternate        = "personero_alterno"

	FieldCandidateName  = "nombre_candidato"
	FieldProfileURL     = "perfil_url"
	FieldImageURL       = "imagen_url"
	FieldCandidacyType  = "tipo_candidato"
	FieldCandidateParty = "partido"
	FieldRegion         = "region"
	FieldBiography      = "biografia"
)

// Ideology of a party. Ingestion never sets it, so every row starts out unknown.
type Ideology string

const (
	IdeologyLeft        Ideology = "Izquierda"
	IdeologyCenterLeft  Ideology = "CentroIzquierda"
	IdeologyCenter      Ideology = "Centro"
	IdeologyCenterRight Ideology = "CentroDerecha"
	IdeologyRight       Ideology = "Derecha"
	IdeologyOther       Ideology = "Otro"
	IdeologyUnknown     Ideology = "Desconocido"
)

// Party represents a normalized political organization
type Party struct {
	ID               string
	JNESymbolID      *int
	Name             string
	Acronym          *string
	RegistrationDate *time.Time
	Logo             []byte
	LegalAddress     *string
	Phones           *string
	Website          *string
	Email            *string
	Titular          *string
	Alternate        *string
	Ideology         Ideology
}

// CandidacyType is the office a candidate runs for
type CandidacyType string

const (
	CandidacyGovernor CandidacyType = "Gobernador"
	CandidacyMayor    CandidacyType = "Alcalde"
)

// Candidate represents a normalized regional or municipal candidate
type Candidate struct {
	ID            string
	FullName      string
	CandidacyType CandidacyType
	ProfileURL    *string
	Photo         []byte
	PartyRef      *string
	Region        *string
	Biography     *string
	CreatedAt     time.Time
}
