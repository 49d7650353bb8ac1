package conversation

// Stage — позиция сессии в фиксированной последовательности шагов анкеты.
// Стадии продвигаются только вперед; единственное исключение — повторный
// показ ссылки на форму внутри StageFormConfirm.
type Stage int

const (
	StageFormConfirm Stage = iota
	StageName
	StagePosition
	StageLocation
	StageExperience
	StageGroupProof
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageFormConfirm:
		return "form_confirm"
	case StageName:
		return "name"
	case StagePosition:
		return "position"
	case StageLocation:
		return "location"
	case StageExperience:
		return "experience"
	case StageGroupProof:
		return "group_proof"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
