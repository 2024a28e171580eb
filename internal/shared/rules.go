package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/playtime/internal/models"
)

// LoadRules reads the skip list and the bad-data remap list.
//
// Both files are JSON arrays; order is preserved because remap rules are first-match-wins.
// Unknown keys are rejected: a misspelled field would otherwise leave a rule that matches everything.
func LoadRules(skipPath, remapPath string) (*models.Rules, error) {
	var rules models.Rules

	if err := decodeRuleFile(skipPath, &rules.Skip); err != nil {
		return nil, err
	}
	if err := decodeRuleFile(remapPath, &rules.Remap); err != nil {
		return nil, err
	}

	return &rules, nil
}

func decodeRuleFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read rules file: %v", ErrConfig, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", ErrConfig, path, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after rules array in %s", ErrConfig, path)
	}

	return nil
}
