package fhir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/pkg/responseformat"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func fixedTransformer() *Transformer {
	n := 0
	return &Transformer{
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		Now: func() time.Time { return time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC) },
	}
}

func cleaned(t *testing.T, values ...string) *series.Series {
	t.Helper()
	header := []string{"timestamp", "heart_rate"}
	rows := make([]series.Row, len(values))
	for i, v := range values {
		ts := time.Date(2024, 3, 1, 8, 0, 5*i, 0, time.UTC).Format("2006-01-02T15:04:05")
		rows[i] = series.NewRow(header, []string{ts, v})
	}
	s, err := series.Clean(rows, series.DefaultOptions())
	require.NoError(t, err)
	return s
}

func TestTransform(t *testing.T) {
	s := cleaned(t, "60", "62")
	b, err := fixedTransformer().Transform(s, Patient{ID: "example-patient", Family: "Doe", Given: "John", Gender: "male", BirthDate: "1980-01-01"})
	require.NoError(t, err)

	require.Equal(t, "Bundle", b.ResourceType)
	require.Equal(t, "collection", b.Type)
	require.Equal(t, "id-1", b.ID)
	require.Equal(t, "2024-03-02T00:00:00Z", b.Timestamp)
	require.Len(t, b.Entry, 3)

	patient, ok := b.Entry[0].Resource.(*PatientResource)
	require.True(t, ok)
	require.Equal(t, "example-patient", patient.ID)
	require.Equal(t, []HumanName{{Use: "official", Family: "Doe", Given: []string{"John"}}}, patient.Name)

	obs, ok := b.Entry[2].Resource.(*Observation)
	require.True(t, ok)
	require.Equal(t, "urn:uuid:"+obs.ID, b.Entry[2].FullURL)
	require.Equal(t, "final", obs.Status)
	require.Equal(t, "Patient/example-patient", obs.Subject.Reference)
	require.Equal(t, "8867-4", obs.Code.Coding[0].Code)
	require.Equal(t, "vital-signs", obs.Category[0].Coding[0].Code)
	require.Equal(t, int64(62), obs.ValueQuantity.Value)
	require.Equal(t, "2024-03-01T08:00:05Z", obs.EffectiveDateTime)
}

func TestTransformInvalidValue(t *testing.T) {
	s := cleaned(t, "60", "fast")
	_, err := fixedTransformer().Transform(s, Patient{ID: "p"})
	var invalid *series.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "fast", invalid.Reading.Value)
}

func TestTransformRequiresReadingsAndPatient(t *testing.T) {
	_, err := fixedTransformer().Transform(&series.Series{}, Patient{ID: "p"})
	require.Error(t, err)

	_, err = fixedTransformer().Transform(cleaned(t, "60"), Patient{})
	require.Error(t, err)
}

func TestWrite(t *testing.T) {
	b, err := NewTransformer().Transform(cleaned(t, "60"), Patient{ID: "p"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, responseformat.JSON, b))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "Bundle", doc["resourceType"])
	entries := doc["entry"].([]any)
	obs := entries[1].(map[string]any)["resource"].(map[string]any)
	require.Equal(t, "Observation", obs["resourceType"])
	require.EqualValues(t, 60, obs["valueQuantity"].(map[string]any)["value"])

	buf.Reset()
	require.NoError(t, Write(&buf, responseformat.MsgPack, b))
	doc = nil
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "collection", doc["type"])
}
