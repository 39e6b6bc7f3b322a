package process

// Instruction identifies one step of a producer or consumer program.
// Scheduling logic dispatches on the Instruction value; String returns the
// text shown to users.
type Instruction int

// Producer and consumer instructions.
const (
	CreateMessage Instruction = iota
	AcquireMutexP
	AcquireNrEmpty
	WriteBuffer
	AdvanceIn
	ReleaseNrFull
	ReleaseMutexP

	AcquireMutexC
	AcquireNrFull
	ReadBuffer
	AdvanceOut
	ReleaseNrEmpty
	ReleaseMutexC
)

var instructionText = map[Instruction]string{
	CreateMessage:  "create a new message M",
	AcquireMutexP:  "P(mutexP)",
	AcquireNrEmpty: "P(nrempty)",
	WriteBuffer:    "buffer[in] <- M",
	AdvanceIn:      "in <- (in + 1) mod N",
	ReleaseNrFull:  "V(nrfull)",
	ReleaseMutexP:  "V(mutexP)",
	AcquireMutexC:  "P(mutexC)",
	AcquireNrFull:  "P(nrfull)",
	ReadBuffer:     "m <- buffer[out]",
	AdvanceOut:     "out <- (out + 1) mod N",
	ReleaseNrEmpty: "V(nrempty)",
	ReleaseMutexC:  "V(mutexC)",
}

func (i Instruction) String() string {
	text, ok := instructionText[i]
	if !ok {
		return "unknown"
	}

	return text
}

var producerProgram = []Instruction{
	CreateMessage,
	AcquireMutexP,
	AcquireNrEmpty,
	WriteBuffer,
	AdvanceIn,
	ReleaseNrFull,
	ReleaseMutexP,
}

var consumerProgram = []Instruction{
	AcquireMutexC,
	AcquireNrFull,
	ReadBuffer,
	AdvanceOut,
	ReleaseNrEmpty,
	ReleaseMutexC,
}

// Program returns a copy of the fixed instruction list of a process type.
func Program(t Type) []Instruction {
	var program []Instruction
	switch t {
	case Producer:
		program = producerProgram
	case Consumer:
		program = consumerProgram
	default:
		panic("unknown process type")
	}

	return append([]Instruction(nil), program...)
}
