package domain

// InstructionKind tells the driver how to move its cursor after a node is displayed.
type InstructionKind int

const (
	// InstructionContinue advances the cursor to the next node.
	InstructionContinue InstructionKind = iota
	// InstructionGoto moves the cursor to Instruction.Target.
	InstructionGoto
	// InstructionExit ends the run with Instruction.ExitCode.
	InstructionExit
)

func (k InstructionKind) String() string {
	switch k {
	case InstructionContinue:
		return "continue"
	case InstructionGoto:
		return "goto"
	case InstructionExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Instruction is the control-flow result of displaying a node.
// Target is only meaningful for InstructionGoto and ExitCode only for InstructionExit.
type Instruction struct {
	Kind          InstructionKind
	Target        int
	ExitCode      int
	PauseForInput bool
}

// Next advances to the following node immediately.
func Next() Instruction {
	return Instruction{Kind: InstructionContinue}
}

// NextAfterInput advances to the following node once the player asks to continue.
func NextAfterInput() Instruction {
	return Instruction{Kind: InstructionContinue, PauseForInput: true}
}

// JumpTo moves the cursor to the node at index.
func JumpTo(index int) Instruction {
	return Instruction{Kind: InstructionGoto, Target: index}
}

// ExitWith ends the run returning code.
func ExitWith(code int) Instruction {
	return Instruction{Kind: InstructionExit, ExitCode: code}
}
