package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/dbx"

	"elecciones/internal/linker"
	"elecciones/internal/models"
)

type partyRow struct {
	ID               string  `db:"id"`
	JNESymbolID      *int    `db:"jne_symbol_id"`
	Name             string  `db:"name"`
	Acronym          *string `db:"acronym"`
	RegistrationDate *string `db:"registration_date"`
	Logo             []byte  `db:"logo"`
	LegalAddress     *string `db:"legal_address"`
	Phones           *string `db:"phones"`
	Website          *string `db:"website"`
	Email            *string `db:"email"`
	Titular          *string `db:"titular"`
	Alternate        *string `db:"alternate"`
	Ideology         *string `db:"ideology"`
}

func (r partyRow) toModel() models.Party {
	p := models.Party{
		ID:           r.ID,
		JNESymbolID:  r.JNESymbolID,
		Name:         r.Name,
		Acronym:      r.Acronym,
		Logo:         r.Logo,
		LegalAddress: r.LegalAddress,
		Phones:       r.Phones,
		Website:      r.Website,
		Email:        r.Email,
		Titular:      r.Titular,
		Alternate:    r.Alternate,
		Ideology:     models.IdeologyUnknown,
	}
	if r.Ideology != nil && *r.Ideology != "" {
		p.Ideology = models.Ideology(*r.Ideology)
	}
	if r.RegistrationDate != nil {
		if date, err := time.Parse(dateLayout, *r.RegistrationDate); err == nil {
			p.RegistrationDate = &date
		}
	}
	return p
}

// Parties returns every stored party ordered by name
func (s *Store) Parties(ctx context.Context) ([]models.Party, error) {
	var rows []partyRow
	err := s.db.Select("*").
		From(TableParties).
		OrderBy("name ASC", "id ASC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}

	parties := make([]models.Party, len(rows))
	for i, row := range rows {
		parties[i] = row.toModel()
	}
	return parties, nil
}

// PartyNames returns the registry names candidates are linked against
func (s *Store) PartyNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.Select("name").
		From(TableParties).
		OrderBy("name ASC").
		WithContext(ctx).
		Column(&names)
	if err != nil {
		return nil, fmt.Errorf("failed to list party names: %w", err)
	}
	return names, nil
}

// PartyListing is the outward shape of a party, logo base64 encoded
type PartyListing struct {
	ID               string  `json:"id"`
	JNESymbolID      *int    `json:"jne_symbol_id"`
	Name             string  `json:"name"`
	Acronym          *string `json:"acronym"`
	RegistrationDate *string `json:"registration_date"`
	Logo             *string `json:"logo_base64"`
	LegalAddress     *string `json:"legal_address"`
	Phones           *string `json:"phones"`
	Website          *string `json:"website"`
	Email            *string `json:"email"`
	Titular          *string `json:"titular"`
	Alternate        *string `json:"alternate"`
	Ideology         string  `json:"ideology"`
}

func (s *Store) ListParties(ctx context.Context) ([]PartyListing, error) {
	parties, err := s.Parties(ctx)
	if err != nil {
		return nil, err
	}

	listing := make([]PartyListing, len(parties))
	for i, p := range parties {
		item := PartyListing{
			ID:           p.ID,
			JNESymbolID:  p.JNESymbolID,
			Name:         p.Name,
			Acronym:      p.Acronym,
			LegalAddress: p.LegalAddress,
			Phones:       p.Phones,
			Website:      p.Website,
			Email:        p.Email,
			Titular:      p.Titular,
			Alternate:    p.Alternate,
			Ideology:     string(p.Ideology),
		}
		if p.RegistrationDate != nil {
			date := p.RegistrationDate.Format(dateLayout)
			item.RegistrationDate = &date
		}
		if len(p.Logo) > 0 {
			logo := base64.StdEncoding.EncodeToString(p.Logo)
			item.Logo = &logo
		}
		listing[i] = item
	}
	return listing, nil
}

// CandidateFilter narrows ListCandidates. Empty fields match everything;
// set ones are substring matches ignoring case and accents.
type CandidateFilter struct {
	Region        string
	CandidacyType string
}

// CandidateListing is a candidate joined with the party it was linked to
type CandidateListing struct {
	ID            string  `db:"id" json:"id"`
	FullName      string  `db:"full_name" json:"full_name"`
	CandidacyType string  `db:"candidacy_type" json:"candidacy_type"`
	ProfileURL    *string `db:"profile_url" json:"profile_url"`
	Photo         []byte  `db:"photo" json:"photo_base64,omitempty"`
	PartyName     *string `db:"party_name" json:"party_name"`
	PartyID       *string `db:"party_id" json:"party_id"`
	PartySymbolID *int    `db:"party_symbol_id" json:"party_symbol_id"`
	Region        *string `db:"region" json:"region"`
	Biography     *string `db:"biography" json:"biography"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
}

func (s *Store) ListCandidates(ctx context.Context, filter CandidateFilter) ([]CandidateListing, error) {
	query := s.db.Select(
		"c.id", "c.full_name", "c.candidacy_type", "c.profile_url", "c.photo",
		"c.party_name", "c.region", "c.biography", "c.created_at",
		"p.id AS party_id", "p.jne_symbol_id AS party_symbol_id",
	).
		From(TableCandidates+" c").
		LeftJoin(TableParties+" p", dbx.NewExp("p.name = c.party_name"))

	var all []CandidateListing
	err := query.OrderBy("c.candidacy_type ASC", "c.full_name ASC").WithContext(ctx).All(&all)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	rows := []CandidateListing{}
	for _, row := range all {
		if contains(row.Region, filter.Region) && contains(&row.CandidacyType, filter.CandidacyType) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// CenterFilter narrows ListCenters by district and name substrings,
// ignoring case and accents
type CenterFilter struct {
	District string
	Name     string
}

type CenterListing struct {
	ID        string   `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Address   string   `db:"address" json:"address"`
	District  *string  `db:"district" json:"district"`
	Latitude  *float64 `db:"latitude" json:"latitude"`
	Longitude *float64 `db:"longitude" json:"longitude"`
	Tables    int      `db:"tables" json:"tables"`
}

func (s *Store) ListCenters(ctx context.Context, filter CenterFilter) ([]CenterListing, error) {
	query := s.db.Select(
		"vc.id", "vc.name", "vc.address", "vc.district", "vc.latitude", "vc.longitude",
		"COUNT(pt.id) AS tables",
	).
		From(TableVotingCenters+" vc").
		LeftJoin(TablePollingTables+" pt", dbx.NewExp("pt.center_id = vc.id")).
		GroupBy("vc.id")

	var all []CenterListing
	if err := query.OrderBy("vc.name ASC").WithContext(ctx).All(&all); err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}

	rows := []CenterListing{}
	for _, row := range all {
		if contains(row.District, filter.District) && contains(&row.Name, filter.Name) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// contains reports whether needle occurs in value once both are folded.
// An empty needle matches anything, a nil value matches only that.
func contains(value *string, needle string) bool {
	if needle == "" {
		return true
	}
	if value == nil {
		return false
	}
	return strings.Contains(linker.Fold(*value), linker.Fold(needle))
}
