// Package fhir maps a cleaned heart-rate series onto a FHIR R4 collection
// bundle: one Patient entry followed by one vital-signs Observation per
// reading.
package fhir

import (
	"fmt"
	"io"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/pkg/responseformat"
	"github.com/google/uuid"
)

const (
	observationCategorySystem = "http://terminology.hl7.org/CodeSystem/observation-category"
	loincSystem               = "http://loinc.org"
	ucumSystem                = "http://unitsofmeasure.org"
	heartRateProfile          = "http://hl7.org/fhir/StructureDefinition/heartrate"

	heartRateCode = "8867-4"
)

// Patient identifies the subject of the recording
type Patient struct {
	ID        string
	Family    string
	Given     string
	Gender    string
	BirthDate string
}

// Bundle is a FHIR Bundle resource
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Timestamp    string        `json:"timestamp"`
	Entry        []BundleEntry `json:"entry"`
}

// BundleEntry carries one resource, either a *PatientResource or an
// *Observation
type BundleEntry struct {
	FullURL  string `json:"fullUrl"`
	Resource any    `json:"resource"`
}

type PatientResource struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id"`
	Name         []HumanName `json:"name,omitempty"`
	Gender       string      `json:"gender,omitempty"`
	BirthDate    string      `json:"birthDate,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

type Observation struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id"`
	Meta              Meta              `json:"meta"`
	Status            string            `json:"status"`
	Category          []CodeableConcept `json:"category"`
	Code              CodeableConcept   `json:"code"`
	Subject           Reference         `json:"subject"`
	EffectiveDateTime string            `json:"effectiveDateTime"`
	ValueQuantity     Quantity          `json:"valueQuantity"`
}

type Meta struct {
	Profile []string `json:"profile"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding"`
	Text   string   `json:"text,omitempty"`
}

type Coding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

type Reference struct {
	Reference string `json:"reference"`
}

type Quantity struct {
	Value  int64  `json:"value"`
	Unit   string `json:"unit"`
	System string `json:"system"`
	Code   string `json:"code"`
}

// Transformer builds bundles. IDs and the bundle timestamp come from
// injectable functions so output can be made deterministic.
type Transformer struct {
	NewID func() string
	Now   func() time.Time
}

// NewTransformer returns a Transformer using random UUIDs and the wall clock
func NewTransformer() *Transformer {
	return &Transformer{
		NewID: func() string { return uuid.New().String() },
		Now:   time.Now,
	}
}

// Transform builds the bundle for s. Every reading value must be an integer;
// the first one that is not fails the export with a series.InvalidValueError.
func (t *Transformer) Transform(s *series.Series, p Patient) (*Bundle, error) {
	if s.Len() == 0 {
		return nil, &series.InsufficientDataError{Stage: "fhir export", Need: 1, Got: 0}
	}
	if p.ID == "" {
		return nil, fmt.Errorf("patient id is required")
	}

	b := &Bundle{
		ResourceType: "Bundle",
		ID:           t.NewID(),
		Type:         "collection",
		Timestamp:    t.Now().UTC().Format(time.RFC3339),
		Entry:        make([]BundleEntry, 0, s.Len()+1),
	}

	patient := &PatientResource{
		ResourceType: "Patient",
		ID:           p.ID,
		Gender:       p.Gender,
		BirthDate:    p.BirthDate,
	}
	if p.Family != "" || p.Given != "" {
		name := HumanName{Use: "official", Family: p.Family}
		if p.Given != "" {
			name.Given = []string{p.Given}
		}
		patient.Name = []HumanName{name}
	}
	b.Entry = append(b.Entry, BundleEntry{FullURL: "urn:uuid:" + t.NewID(), Resource: patient})

	subject := Reference{Reference: "Patient/" + p.ID}
	for _, r := range s.Readings {
		v, err := series.ParseValue(r)
		if err != nil {
			return nil, err
		}
		id := t.NewID()
		b.Entry = append(b.Entry, BundleEntry{
			FullURL: "urn:uuid:" + id,
			Resource: &Observation{
				ResourceType: "Observation",
				ID:           id,
				Meta:         Meta{Profile: []string{heartRateProfile}},
				Status:       "final",
				Category: []CodeableConcept{{
					Coding: []Coding{{System: observationCategorySystem, Code: "vital-signs", Display: "Vital Signs"}},
					Text:   "Vital Signs",
				}},
				Code: CodeableConcept{
					Coding: []Coding{{System: loincSystem, Code: heartRateCode, Display: "Heart rate"}},
					Text:   "Heart rate",
				},
				Subject:           subject,
				EffectiveDateTime: r.Timestamp.Format(time.RFC3339Nano),
				ValueQuantity: Quantity{
					Value:  v,
					Unit:   "beats/minute",
					System: ucumSystem,
					Code:   "/min",
				},
			},
		})
	}
	return b, nil
}

// Write encodes the bundle in the given format
func Write(w io.Writer, format responseformat.Format, b *Bundle) error {
	return responseformat.Encode(w, format, b)
}
