package hazardapi

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/model"
)

// ErrInvalidRequest marks malformed API requests. Inputs that are well
// formed but outside the physical domain are reported as outcomes instead.
var ErrInvalidRequest = errors.New("invalid request")

// requireFields checks that every key is present and carries a number.
func requireFields(s *structpb.Struct, keys ...string) error {
	if s == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidRequest)
	}
	fields := s.GetFields()
	var missing []string
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
			return fmt.Errorf("%w: %s must be a number", ErrInvalidRequest, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// parseTarget resolves the requested target. An empty name selects the eye
// target for the source geometry.
func parseTarget(name string, wavelengthNm float64, g model.SourceGeometry) (model.Target, error) {
	t, err := types.ResolveTarget(name, wavelengthNm, g)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return t, nil
}

func parseClass(name string) (model.EmissionClass, error) {
	c, err := types.ResolveClass(name)
	if err != nil {
		return model.ClassNone, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return c, nil
}
