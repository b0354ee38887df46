package graph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// Payload is a relation network as served by the discograph API
type Payload struct {
	Center Center        `json:"center"`
	Pages  int           `json:"pages" validate:"min=1"`
	Nodes  []NodePayload `json:"nodes" validate:"dive"`
	Links  []LinkPayload `json:"links" validate:"dive"`
}

// NodePayload is an entity entry of a Payload
type NodePayload struct {
	Key           string      `json:"key" validate:"required"`
	Type          string      `json:"type" validate:"required,oneof=artist label"`
	Name          string      `json:"name,omitempty"`
	Distance      int         `json:"distance" validate:"min=0"`
	Size          float64     `json:"size" validate:"min=0"`
	Cluster       *int        `json:"cluster,omitempty"`
	Links         []string    `json:"links,omitempty"`
	Pages         []int       `json:"pages,omitempty" validate:"omitempty,dive,min=1"`
	Missing       int         `json:"missing,omitempty" validate:"min=0"`
	MissingByPage map[int]int `json:"missingByPage,omitempty"`
}

// LinkPayload is a relation entry of a Payload
type LinkPayload struct {
	Key      string `json:"key" validate:"required"`
	Source   string `json:"source" validate:"required"`
	Target   string `json:"target" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Distance int    `json:"distance,omitempty"`
	Pages    []int  `json:"pages,omitempty" validate:"omitempty,dive,min=1"`
}

// Decode parses and validates a JSON payload
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, NewError("Decode").Payload().
			Cause(fmt.Errorf("%w: %v", ErrInvalidPayload, err)).Err()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field constraints and referential integrity. A payload that
// passes can be merged without leaving an edge with an unresolved endpoint.
func (p *Payload) Validate() error {
	if p == nil {
		return NewError("Validate").Payload().Cause(fmt.Errorf("%w: nil payload", ErrInvalidPayload)).Err()
	}

	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}

	nodeKeys := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, dup := nodeKeys[n.Key]; dup {
			return NewError("Validate").Node(n.Key).Cause(ErrDuplicateKey).Err()
		}
		nodeKeys[n.Key] = struct{}{}
		for _, page := range n.Pages {
			if page > p.Pages {
				return NewError("Validate").Node(n.Key).Field("pages").
					Cause(fmt.Errorf("%w: page %d exceeds page count %d", ErrInvalidPayload, page, p.Pages)).Err()
			}
		}
	}

	if _, ok := nodeKeys[p.Center.Key]; !ok {
		return NewError("Validate").Payload().Field("center").
			Cause(fmt.Errorf("%w: %q", ErrUnknownCenter, p.Center.Key)).Err()
	}

	linkKeys := make(map[string]struct{}, len(p.Links))
	for _, l := range p.Links {
		if _, dup := linkKeys[l.Key]; dup {
			return NewError("Validate").Link(l.Key).Cause(ErrDuplicateKey).Err()
		}
		// relation keys double as intermediate node keys
		if _, clash := nodeKeys[l.Key]; clash {
			return NewError("Validate").Link(l.Key).Cause(ErrDuplicateKey).Err()
		}
		linkKeys[l.Key] = struct{}{}

		if _, ok := nodeKeys[l.Source]; !ok {
			return NewError("Validate").Link(l.Key).Field("source").
				Cause(fmt.Errorf("%w: %q", ErrUnknownNode, l.Source)).Err()
		}
		if _, ok := nodeKeys[l.Target]; !ok {
			return NewError("Validate").Link(l.Key).Field("target").
				Cause(fmt.Errorf("%w: %q", ErrUnknownNode, l.Target)).Err()
		}
		for _, page := range l.Pages {
			if page > p.Pages {
				return NewError("Validate").Link(l.Key).Field("pages").
					Cause(fmt.Errorf("%w: page %d exceeds page count %d", ErrInvalidPayload, page, p.Pages)).Err()
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors to a MergeError naming the first failing field
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return NewError("Validate").Payload().Cause(fmt.Errorf("%w: %v", ErrInvalidPayload, err)).Err()
	}

	e := validationErrs[0]
	var reason string
	switch e.Tag() {
	case "required":
		reason = "field is required"
	case "min":
		reason = fmt.Sprintf("must be at least %s", e.Param())
	case "oneof":
		reason = fmt.Sprintf("must be one of [%s]", e.Param())
	default:
		reason = fmt.Sprintf("validation failed (%s)", e.Tag())
	}

	return NewError("Validate").Payload().Field(e.Namespace()).
		Cause(fmt.Errorf("%w: %s", ErrInvalidPayload, reason)).Err()
}
