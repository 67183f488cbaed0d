package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/mobility/pkg/assessment"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/storage"
	"gopkg.in/yaml.v3"
)

const dorothyLine = `{"deconditioning":{"probability":0.647,"severity":"high"},"vte":{"probability":0.2,"severity":"moderate"},"falls":{"probability":0.3,"severity":"moderate"},"pressure":{"probability":0.1,"severity":"low"},"mobility_recommendation":"Ambulate","input_echo":{"age":82,"level_of_care":"rehab","mobility_status":"walking_assist","cognitive_status":"normal","days_immobile":12,"comorbidities":["diabetes"],"medications":[],"devices":[],"incontinent":false,"albumin_low":false,"on_vte_prophylaxis":true}}`

type memoryWriter struct {
	rows []storage.AssessmentRow
}

func (m *memoryWriter) Write(row storage.AssessmentRow) error {
	m.rows = append(m.rows, row)
	return nil
}

func TestScore(t *testing.T) {
	input := strings.Join([]string{
		dorothyLine,
		"",
		"{not json",
		strings.Replace(dorothyLine, `"walking_assist"`, `"crawling"`, 1),
	}, "\n")

	w := &memoryWriter{}
	engine := assessment.NewEngine(clinical.DefaultVocabulary())

	s, err := score(strings.NewReader(input), w, engine, assessment.NewValidator(true))
	require.NoError(t, err)
	assert.Equal(t, summary{Scored: 1, Rejected: 2}, s)
	require.Len(t, w.rows, 1)
	assert.Equal(t, "line-1", w.rows[0].RequestID)
	assert.Equal(t, 7.8, w.rows[0].PredictedDays)
	assert.Equal(t, 0.2, w.rows[0].MobilityGoalBenefit)

	w = &memoryWriter{}
	s, err = score(strings.NewReader(input), w, engine, assessment.NewValidator(false))
	require.NoError(t, err)
	assert.Equal(t, summary{Scored: 2, Rejected: 1}, s)
}

func TestScoreCommandWritesParquet(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jsonl")
	out := filepath.Join(dir, "out.parquet")
	require.NoError(t, os.WriteFile(in, []byte(dorothyLine+"\n"+dorothyLine+"\n"), 0o600))

	cmd := scoreCmd()
	cmd.Flags().String("vocabulary", "", "")
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--input", in, "--output", out})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "scored 2, rejected 0")

	rows, err := parquet.ReadFile[storage.AssessmentRow](out)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0].ReadmissionRiskLevel)
}

func TestVocabularyCommand(t *testing.T) {
	cmd := vocabularyCmd()
	cmd.Flags().String("vocabulary", "", "")
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var vocab clinical.Vocabulary
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &vocab))
	assert.Equal(t, clinical.DefaultVocabulary(), vocab)
}
