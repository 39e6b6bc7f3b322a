package process

import "fmt"

// MarshalText encodes the type as "producer" or "consumer".
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes "producer" or "consumer".
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalText encodes the status as its lower-case name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText encodes the instruction as its display text.
func (i Instruction) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{Waiting, Running, Blocked, Finished} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown process status %q", text)
}

// UnmarshalText decodes an instruction display text.
func (i *Instruction) UnmarshalText(text []byte) error {
	for candidate, t := range instructionText {
		if t == string(text) {
			*i = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown instruction %q", text)
}
