// Package session implements the quiz session controller and the
// deterministic progress-persistence model behind resume-or-restart.
package session

import "fmt"

// KeyKind enumerates the practice scopes a session can cover.
type KeyKind int

const (
	KindBank KeyKind = iota
	KindSyllabusAll
	KindSyllabusBook
	KindSyllabusTopic
	KindTag
	KindFavorites
	KindMistakes
	KindLegacyBook
	KindUnmatched
)

// Key identifies a practice scope. It is a proper sum type in memory and
// serializes to the documented string format only at the storage
// boundary — the string form is the resume-matching identity and must
// stay stable across versions.
type Key struct {
	Kind       KeyKind
	BankID     string
	SyllabusID string
	BookID     string
	TopicID    string
	Tag        string
	BookName   string
}

func BankKey(bankID string) Key {
	return Key{Kind: KindBank, BankID: bankID}
}

func SyllabusAllKey(syllabusID string) Key {
	return Key{Kind: KindSyllabusAll, SyllabusID: syllabusID}
}

func SyllabusBookKey(syllabusID, bookID string) Key {
	return Key{Kind: KindSyllabusBook, SyllabusID: syllabusID, BookID: bookID}
}

func SyllabusTopicKey(syllabusID, bookID, topicID string) Key {
	return Key{Kind: KindSyllabusTopic, SyllabusID: syllabusID, BookID: bookID, TopicID: topicID}
}

func TagKey(tag string) Key {
	return Key{Kind: KindTag, Tag: tag}
}

func FavoritesKey() Key {
	return Key{Kind: KindFavorites}
}

func MistakesKey() Key {
	return Key{Kind: KindMistakes}
}

func LegacyBookKey(bookName string) Key {
	return Key{Kind: KindLegacyBook, BookName: bookName}
}

func UnmatchedKey(syllabusID string) Key {
	return Key{Kind: KindUnmatched, SyllabusID: syllabusID}
}

// String renders the storage-boundary form. These exact strings are the
// persisted map keys; changing them orphans existing progress.
func (k Key) String() string {
	switch k.Kind {
	case KindBank:
		return "bank:" + k.BankID
	case KindSyllabusAll:
		return fmt.Sprintf("syllabus:%s:all", k.SyllabusID)
	case KindSyllabusBook:
		return fmt.Sprintf("syllabus:%s:book:%s", k.SyllabusID, k.BookID)
	case KindSyllabusTopic:
		return fmt.Sprintf("syllabus:%s:topic:%s:%s", k.SyllabusID, k.BookID, k.TopicID)
	case KindTag:
		return "tag:" + k.Tag
	case KindFavorites:
		return "favorites-session"
	case KindMistakes:
		return "mistakes-session"
	case KindLegacyBook:
		return "legacy-book:" + k.BookName
	case KindUnmatched:
		return fmt.Sprintf("syllabus:%s:unmatched", k.SyllabusID)
	}
	return ""
}
