package demo

import "strconv"

// Kind tags the payload carried by a Message.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindText
)

// Message is the transfer value exchanged by the demo coroutines.
type Message struct {
	Kind Kind
	N    int
	Text string
}

// Int returns an integer message.
func Int(n int) Message { return Message{Kind: KindInt, N: n} }

// Text returns a text message.
func Text(s string) Message { return Message{Kind: KindText, Text: s} }

func (m Message) String() string {
	switch m.Kind {
	case KindInt:
		return strconv.Itoa(m.N)
	case KindText:
		return m.Text
	}
	return "<none>"
}
