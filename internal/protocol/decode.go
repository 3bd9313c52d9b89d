package protocol

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// DecodeError describes why an inbound payload could not become a Command.
// Message is safe to show to the sender.
type DecodeError struct {
	Type    string
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func commandValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Decode turns a raw text frame into a Command. Every failure is a
// *DecodeError.
func Decode(raw []byte) (Command, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &DecodeError{Message: "Invalid JSON format", Err: err}
	}
	kind := strings.TrimSpace(envelope.Type)
	switch kind {
	case TypeJoin, TypeJoinGame:
		cmd, err := decodeInto[Join](raw, TypeJoin)
		if err != nil {
			return nil, err
		}
		cmd.Name = strings.TrimSpace(cmd.Name)
		cmd.DeviceID = strings.TrimSpace(cmd.DeviceID)
		if cmd.BuzzerSound == "" {
			cmd.BuzzerSound = "default"
		}
		return validated(cmd, TypeJoin)
	case TypeBuzz:
		cmd, err := decodeInto[Buzz](raw, kind)
		if err != nil {
			return nil, err
		}
		return validated(cmd, kind)
	case TypeStartRound:
		return decodeInto[StartRound](raw, kind)
	case TypeEndRound:
		return decodeInto[EndRound](raw, kind)
	case TypeJudgeAnswer:
		cmd, err := decodeInto[JudgeAnswer](raw, kind)
		if err != nil {
			return nil, err
		}
		return validated(cmd, kind)
	case TypeSyncTime:
		return decodeInto[SyncTime](raw, kind)
	case TypePing:
		return Ping{}, nil
	case TypeGetGameState:
		return GetGameState{}, nil
	case "":
		return nil, &DecodeError{Message: "Message type is required"}
	default:
		return nil, &DecodeError{Type: kind, Message: fmt.Sprintf("Unknown message type: %s", kind)}
	}
}

func decodeInto[T Command](raw []byte, kind string) (T, error) {
	var cmd T
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return cmd, &DecodeError{Type: kind, Message: fmt.Sprintf("Invalid %s message", kind), Err: err}
	}
	return cmd, nil
}

func validated(cmd Command, kind string) (Command, error) {
	if err := check(cmd, kind); err != nil {
		return nil, err
	}
	return cmd, nil
}

func check(cmd Command, kind string) error {
	err := commandValidator().Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &DecodeError{
			Type:    kind,
			Message: fmt.Sprintf("Invalid %s message: %s %s", kind, first.Field(), describeTag(first.Tag())),
			Err:     err,
		}
	}
	return &DecodeError{Type: kind, Message: fmt.Sprintf("Invalid %s message", kind), Err: err}
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "is too small"
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}
