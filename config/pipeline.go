package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"capflow/core/chip"
	"capflow/core/classifier"
	"capflow/core/costflow"
	"capflow/core/session"
	"capflow/core/synthetic"
	"capflow/core/types"
)

// LoadPipelineParams reads the structured threshold document at path (YAML)
// layered under environment variable overrides (CAPFLOW_ prefix), and
// returns the fully assembled session.Params (§6's configuration table).
// Any threshold that resolves to a missing or negative value is a fatal
// misconfiguration — the pipeline never silently substitutes a guess for a
// threshold that controls classification (§7).
func LoadPipelineParams(path string) (session.Params, error) {
	v := viper.New()
	v.SetEnvPrefix("CAPFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setPipelineDefaults(v)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return session.Params{}, fmt.Errorf("LoadPipelineParams: %w", err)
		}
	}

	params := session.Params{
		Classifier: classifier.Thresholds{
			BigOrderThreshold: v.GetFloat64("classifier.big_order_threshold"),
			WallThreshold:     v.GetFloat64("classifier.wall_threshold"),
		},
		Weights:    weightMapFrom(v),
		Builder: synthetic.Params{
			WindowSec:             v.GetInt("builder.window_sec"),
			SyntheticThreshold:    v.GetFloat64("builder.synthetic_threshold"),
			TWAPVarianceThreshold: v.GetFloat64("builder.twap_variance_threshold"),
			VWAPCoVThreshold:      v.GetFloat64("builder.vwap_cov_threshold"),
		},
		OrderTypeWeights: orderTypeWeightsFrom(v),
		MAPeriods:        intsFrom(v, "costflow.ma_periods"),
		FloatMarketCap:   v.GetFloat64("costflow.float_market_cap"),
		Chip: chip.Params{
			PriceBins:          v.GetInt("chip.price_bins"),
			ConcentrationRatio: v.GetFloat64("chip.concentration_ratio"),
			ValidationDistance: v.GetFloat64("chip.validation_distance"),
		},
	}

	if err := validate(params); err != nil {
		return session.Params{}, err
	}
	return params, nil
}

func setPipelineDefaults(v *viper.Viper) {
	v.SetDefault("classifier.big_order_threshold", 100000.0)
	v.SetDefault("classifier.wall_threshold", 10000.0)

	v.SetDefault("weight_map.AGG_BUY", 1.5)
	v.SetDefault("weight_map.AGG_SELL", 1.5)
	v.SetDefault("weight_map.DEF_BUY", 0.8)
	v.SetDefault("weight_map.DEF_SELL", 0.8)
	v.SetDefault("weight_map.SMALL_BUY", 0.0)
	v.SetDefault("weight_map.SMALL_SELL", 0.0)
	v.SetDefault("weight_map.NOISE", 0.0)

	v.SetDefault("builder.window_sec", 30)
	v.SetDefault("builder.synthetic_threshold", 500000.0)
	v.SetDefault("builder.twap_variance_threshold", 1.0)
	v.SetDefault("builder.vwap_cov_threshold", 0.3)

	v.SetDefault("order_type_weight.ORIGINAL", 1.5)
	v.SetDefault("order_type_weight.ALGO_TWAP", 1.3)
	v.SetDefault("order_type_weight.ALGO_VWAP", 1.3)

	v.SetDefault("costflow.ma_periods", []int{5, 10, 20})
	v.SetDefault("costflow.float_market_cap", 0.0)

	v.SetDefault("chip.price_bins", 100)
	v.SetDefault("chip.concentration_ratio", 0.6)
	v.SetDefault("chip.validation_distance", 0.20)
}

func weightMapFrom(v *viper.Viper) classifier.WeightMap {
	raw := v.GetStringMap("weight_map")
	weights := make(classifier.WeightMap, len(raw))
	for label, val := range raw {
		if f, ok := val.(float64); ok {
			weights[types.Label(strings.ToUpper(label))] = f
		}
	}
	return weights
}

func orderTypeWeightsFrom(v *viper.Viper) costflow.OrderTypeWeights {
	raw := v.GetStringMap("order_type_weight")
	weights := make(costflow.OrderTypeWeights, len(raw))
	for orderType, val := range raw {
		if f, ok := val.(float64); ok {
			weights[types.OrderType(strings.ToUpper(orderType))] = f
		}
	}
	return weights
}

func intsFrom(v *viper.Viper, key string) []int {
	raw := v.Get(key)
	switch xs := raw.(type) {
	case []int:
		return xs
	case []interface{}:
		out := make([]int, 0, len(xs))
		for _, x := range xs {
			switch n := x.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	default:
		return nil
	}
}

func validate(p session.Params) error {
	if p.Classifier.BigOrderThreshold <= 0 {
		return fmt.Errorf("LoadPipelineParams: classifier.big_order_threshold must be positive")
	}
	if p.Classifier.WallThreshold <= 0 {
		return fmt.Errorf("LoadPipelineParams: classifier.wall_threshold must be positive")
	}
	if p.Builder.WindowSec <= 0 {
		return fmt.Errorf("LoadPipelineParams: builder.window_sec must be positive")
	}
	if p.Builder.SyntheticThreshold <= 0 {
		return fmt.Errorf("LoadPipelineParams: builder.synthetic_threshold must be positive")
	}
	if len(p.MAPeriods) == 0 {
		return fmt.Errorf("LoadPipelineParams: costflow.ma_periods must not be empty")
	}
	if p.Chip.PriceBins <= 0 {
		return fmt.Errorf("LoadPipelineParams: chip.price_bins must be positive")
	}
	return nil
}
