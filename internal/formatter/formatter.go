package formatter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"elecciones/internal/linker"
	"elecciones/internal/models"
)

// Namespace seeds the deterministic record ids, so that re-ingesting the
// same snapshot yields the same primary keys.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://eleccionesperu.pe"))

var (
	symbolPattern = regexp.MustCompile(`/GetSimbolo/(\d+)`)
	datePattern   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// PartyResolver maps a scraped party name to its registry name
type PartyResolver interface {
	Resolve(name string) (linker.Link, bool)
}

// RecordFormatter turns raw entries into storable records. One formatter
// serves one run: candidates without a profile url are numbered in the
// order they are formatted.
type RecordFormatter struct {
	now      func() time.Time
	resolver PartyResolver
	keyless  map[string]int
}

type Option func(*RecordFormatter)

// WithClock sets the clock CreatedAt is read from
func WithClock(now func() time.Time) Option {
	return func(f *RecordFormatter) { f.now = now }
}

// WithResolver links candidate party names against the party registry
func WithResolver(r PartyResolver) Option {
	return func(f *RecordFormatter) { f.resolver = r }
}

// New creates a new RecordFormatter
func New(opts ...Option) *RecordFormatter {
	f := &RecordFormatter{
		now:     time.Now,
		keyless: make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatParty never fails: fields that cannot be parsed are left nil.
func (f *RecordFormatter) FormatParty(entry models.RawEntry, logo []byte) models.Party {
	name, _ := entry.Get(models.FieldPartyName)

	return models.Party{
		ID:               recordID("party", name),
		JNESymbolID:      parseSymbolID(entry[models.FieldLogoURL]),
		Name:             name,
		RegistrationDate: parseDate(entry[models.FieldRegistrationDate]),
		Logo:             logo,
		LegalAddress:     optional(entry, models.FieldLegalAddress),
		Phones:           optional(entry, models.FieldPhones),
		Website:          optional(entry, models.FieldWebsite),
		Email:            optional(entry, models.FieldEmail),
		Titular:          optional(entry, models.FieldTitular),
		Alternate:        optional(entry, models.FieldAlternate),
		Ideology:         models.IdeologyUnknown,
	}
}

// FormatCandidate never fails. The candidacy type is carried as found.
func (f *RecordFormatter) FormatCandidate(entry models.RawEntry, photo []byte) models.Candidate {
	name, _ := entry.Get(models.FieldCandidateName)
	candidacy, _ := entry.Get(models.FieldCandidacyType)
	profile := optional(entry, models.FieldProfileURL)
	region := optional(entry, models.FieldRegion)
	party := f.partyRef(entry)

	return models.Candidate{
		ID:            recordID("candidate", f.candidateKey(name, candidacy, profile, region, party)),
		FullName:      name,
		CandidacyType: models.CandidacyType(candidacy),
		ProfileURL:    profile,
		Photo:         photo,
		PartyRef:      party,
		Region:        region,
		Biography:     optional(entry, models.FieldBiography),
		CreatedAt:     f.now().UTC(),
	}
}

// candidateKey is the profile url when there is one. Otherwise it is built
// from the card fields plus an occurrence number, so that two keyless
// candidates never share an id while reruns over the same input still do.
func (f *RecordFormatter) candidateKey(name, candidacy string, profile, region, party *string) string {
	if profile != nil {
		return *profile
	}
	key := strings.Join([]string{name, candidacy, deref(region), deref(party)}, "|")
	f.keyless[key]++
	return key + "#" + strconv.Itoa(f.keyless[key])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f *RecordFormatter) partyRef(entry models.RawEntry) *string {
	party := optional(entry, models.FieldCandidateParty)
	if party == nil || f.resolver == nil {
		return party
	}
	if link, ok := f.resolver.Resolve(*party); ok {
		return &link.Name
	}
	return party
}

func recordID(kind, key string) string {
	return uuid.NewSHA1(Namespace, []byte(kind+":"+key)).String()
}

func optional(entry models.RawEntry, field string) *string {
	v, ok := entry.Get(field)
	if !ok {
		return nil
	}
	return &v
}

func parseSymbolID(logoURL string) *int {
	match := symbolPattern.FindStringSubmatch(logoURL)
	if match == nil {
		return nil
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &id
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if !datePattern.MatchString(raw) {
		return nil
	}
	date, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return nil
	}
	return &date
}
