package catalog

import "strings"

// VariantKind classifies how a creature entry came to exist.
type VariantKind int

const (
	VariantUnset VariantKind = iota
	VariantBase
	VariantForm
	VariantTempEvolution
	VariantCostume
)

var variantNames = [...]string{"UNSET", "BASE", "FORM", "TEMP_EVOLUTION", "COSTUME"}

// EnumName returns the symbolic name of the kind.
func (k VariantKind) EnumName() string {
	if k < 0 || int(k) >= len(variantNames) {
		return variantNames[0]
	}
	return variantNames[k]
}

// EnumValue returns the integer value of the kind.
func (k VariantKind) EnumValue() int { return int(k) }

func (k VariantKind) String() string { return k.EnumName() }

// Gender of a guard character.
type Gender int

const (
	GenderUnset Gender = iota
	GenderFemale
	GenderMale
)

var genderNames = [...]string{"UNSET", "FEMALE", "MALE"}

// EnumName returns the symbolic name of the gender.
func (g Gender) EnumName() string {
	if g < 0 || int(g) >= len(genderNames) {
		return genderNames[0]
	}
	return genderNames[g]
}

// EnumValue returns the integer value of the gender.
func (g Gender) EnumValue() int { return int(g) }

func (g Gender) String() string { return g.EnumName() }

// QuestType classifies the feed section a quest came from.
type QuestType int

const (
	QuestUnset QuestType = iota
	QuestRegular
	QuestEvent
	QuestSponsored
	QuestAR
)

var questTypeNames = [...]string{"UNSET", "REGULAR", "EVENT", "SPONSORED", "AR"}

// questSections maps quest feed keys onto quest types.
var questSections = map[string]QuestType{
	"quests":    QuestRegular,
	"event":     QuestEvent,
	"sponsored": QuestSponsored,
	"ar":        QuestAR,
}

// EnumName returns the symbolic name of the quest type.
func (q QuestType) EnumName() string {
	if q < 0 || int(q) >= len(questTypeNames) {
		return questTypeNames[0]
	}
	return questTypeNames[q]
}

// EnumValue returns the integer value of the quest type.
func (q QuestType) EnumValue() int { return int(q) }

func (q QuestType) String() string { return q.EnumName() }

// EventType classifies a time-limited event.
type EventType int

const (
	EventUnknown EventType = iota
	EventGeneric
	EventCommunityDay
	EventSpotlightHour
	EventRaidHour
)

var eventTypeNames = [...]string{"UNKNOWN", "EVENT", "COMMUNITY_DAY", "SPOTLIGHT_HOUR", "RAID_HOUR"}

// EnumName returns the symbolic name of the event type.
func (e EventType) EnumName() string {
	if e < 0 || int(e) >= len(eventTypeNames) {
		return eventTypeNames[0]
	}
	return eventTypeNames[e]
}

// EnumValue returns the integer value of the event type.
func (e EventType) EnumValue() int { return int(e) }

func (e EventType) String() string { return e.EnumName() }

// ParseEventType matches feed spellings such as "community-day" or
// "COMMUNITY_DAY". Unknown spellings yield EventUnknown.
func ParseEventType(s string) EventType {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, name := range eventTypeNames {
		if name == norm {
			return EventType(i)
		}
	}
	return EventUnknown
}

// EventBonusType classifies an event bonus. Its feed spelling is the bonus
// template, e.g. "increased-stardust".
type EventBonusType int

const (
	BonusUnknown EventBonusType = iota
	BonusHatch
	BonusStardust
	BonusCandy
	BonusXP
	BonusTradeRange
	BonusLucky
	BonusIncense
	BonusLuckyEgg
	BonusStarPiece
)

var bonusTypes = [...]struct{ name, template string }{
	{"UNKNOWN", ""},
	{"HATCH", "reduced-hatch-distance"},
	{"STARDUST", "increased-stardust"},
	{"CANDY", "increased-candy"},
	{"XP", "increased-xp"},
	{"TRADE_RANGE", "increased-trade-range"},
	{"LUCKY", "increased-lucky-chance"},
	{"INCENSE", "longer-incense"},
	{"LUCKY_EGG", "longer-lucky-egg"},
	{"STAR_PIECE", "longer-star-piece"},
}

// EnumName returns the symbolic name of the bonus type.
func (b EventBonusType) EnumName() string {
	if b < 0 || int(b) >= len(bonusTypes) {
		return bonusTypes[0].name
	}
	return bonusTypes[b].name
}

// EnumValue returns the integer value of the bonus type.
func (b EventBonusType) EnumValue() int { return int(b) }

// Template returns the feed spelling of the bonus type.
func (b EventBonusType) Template() string {
	if b < 0 || int(b) >= len(bonusTypes) {
		return ""
	}
	return bonusTypes[b].template
}

func (b EventBonusType) String() string { return b.EnumName() }

// ParseEventBonusType matches a bonus by feed template or symbolic name.
func ParseEventBonusType(s string) EventBonusType {
	if s == "" {
		return BonusUnknown
	}
	upper := strings.ToUpper(s)
	for i, bt := range bonusTypes {
		if bt.template == s || bt.name == upper {
			return EventBonusType(i)
		}
	}
	return BonusUnknown
}
