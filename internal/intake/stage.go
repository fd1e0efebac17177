package intake

// Stage is a step of the intake conversation. The zero value is not a valid
// stage; use StageGreeting.
type Stage string

const (
	StageGreeting           Stage = "greeting"
	StageCollectName        Stage = "collect_name"
	StageCollectEmail       Stage = "collect_email"
	StageCollectPhone       Stage = "collect_phone"
	StageCollectExperience  Stage = "collect_experience"
	StageCollectPosition    Stage = "collect_position"
	StageCollectLocation    Stage = "collect_location"
	StageCollectTechStack   Stage = "collect_tech_stack"
	StageTechnicalQuestions Stage = "technical_questions"
	StageCompleted          Stage = "completed"
)

// Stages lists every stage in progression order.
var Stages = []Stage{
	StageGreeting,
	StageCollectName,
	StageCollectEmail,
	StageCollectPhone,
	StageCollectExperience,
	StageCollectPosition,
	StageCollectLocation,
	StageCollectTechStack,
	StageTechnicalQuestions,
	StageCompleted,
}

// Ordinal returns the 1-based position of s in Stages, or 0 when s is unknown.
func (s Stage) Ordinal() int {
	for i, stage := range Stages {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether s is one of Stages.
func (s Stage) Valid() bool {
	return s.Ordinal() > 0
}

func (s Stage) String() string {
	return string(s)
}
