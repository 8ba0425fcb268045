package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
	"github.com/cognicore/ngramq/pkg/ngramq/waste"
)

// Settings are the analysis parameters. They are persisted with every saved
// analysis.
type Settings struct {
	NgramSizes     []int    `yaml:"ngram_sizes" json:"ngram_sizes" validate:"min=1,dive,min=1,max=10"`
	MinOccurrences int      `yaml:"min_occurrences" json:"min_occurrences" validate:"min=1"`
	SortMetric     string   `yaml:"sort_metric" json:"sort_metric" validate:"sortfield"`
	SortAscending  bool     `yaml:"sort_ascending" json:"sort_ascending"`
	CountMode      string   `yaml:"count_mode" json:"count_mode,omitempty" validate:"omitempty,oneof=occurrences distinct"`
	CostPercentile float64  `yaml:"cost_percentile" json:"cost_percentile" validate:"min=0,max=100"`
	CVRPercentile  float64  `yaml:"cvr_percentile" json:"cvr_percentile" validate:"min=0,max=100"`
	MinWasteScore  float64  `yaml:"min_waste_score" json:"min_waste_score" validate:"min=0,max=1"`
	MaxNegatives   int      `yaml:"max_negatives" json:"max_negatives" validate:"min=1"`
	UseStopWords   bool     `yaml:"use_stop_words" json:"use_stop_words"`
	StopWords      []string `yaml:"stop_words" json:"stop_words,omitempty"`

	Filters analytics.Filter `yaml:"filters" json:"filters"`
}

// DefaultSettings mirrors the defaults of the interactive analyser.
func DefaultSettings() Settings {
	return Settings{
		NgramSizes:     []int{1, 2, 3},
		MinOccurrences: 2,
		SortMetric:     string(analytics.SortByCost),
		CostPercentile: waste.DefaultCostPercentile,
		CVRPercentile:  waste.DefaultCVRPercentile,
		MinWasteScore:  waste.DefaultMinWasteScore,
		MaxNegatives:   waste.DefaultMaxNegatives,
		UseStopWords:   true,
	}
}

// LoadSettings reads a YAML settings file. Keys absent from the file keep
// their default values.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// StopSet resolves the stop words to apply. With stop words enabled and no
// explicit list, the default English list is used.
func (s Settings) StopSet() stoplist.Set {
	if !s.UseStopWords {
		return nil
	}
	if len(s.StopWords) == 0 {
		return stoplist.Default()
	}
	return stoplist.Normalize(s.StopWords)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("sortfield", func(fl validator.FieldLevel) bool {
		_, err := analytics.ParseSortField(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field and reports the first violation as an
// InputValueError naming the YAML key.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return internalerr.NewInputValueError(fieldName(fe), fe.Value(), "violates "+reason)
	}
	return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
}

// fieldName turns "Settings.ngram_sizes[0]" into "ngram_sizes[0]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
