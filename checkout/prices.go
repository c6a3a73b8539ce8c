package checkout

import (
	"fmt"
	"sort"
	"strings"

	"fixxer/pricing"
)

// PriceTable maps "<plan>_<period>" keys such as "pro_monthly" to provider
// price identifiers.
type PriceTable map[string]string

// Key builds the table key for a plan and billing period.
func Key(planName string, period pricing.Period) string {
	return strings.ToLower(strings.TrimSpace(planName)) + "_" + string(period)
}

// Resolve looks up the provider price for a plan. It never touches the network.
func (t PriceTable) Resolve(planName string, period pricing.Period) (string, error) {
	key := Key(planName, period)
	id := strings.TrimSpace(t[key])
	if id == "" {
		return "", fmt.Errorf("%s: %w", key, ErrPriceNotConfigured)
	}
	return id, nil
}

// Configured returns the keys that carry a price id, sorted.
func (t PriceTable) Configured() []string {
	keys := make([]string, 0, len(t))
	for k, id := range t {
		if strings.TrimSpace(id) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
