package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Engine.IO packet types.
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
	engineNoop    = '6'
)

// Socket.IO packet types, carried inside an Engine.IO message.
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketAck          = '3'
	socketConnectError = '4'
)

var errMalformed = errors.New("malformed packet")

// socketPacket is a decoded Socket.IO packet.
type socketPacket struct {
	Type      byte
	Namespace string
	AckID     string
	Data      json.RawMessage
}

// parseSocketPacket decodes the part of an Engine.IO message after its
// type byte.
func parseSocketPacket(s string) (socketPacket, error) {
	if s == "" {
		return socketPacket{}, errMalformed
	}
	p := socketPacket{Type: s[0], Namespace: "/"}
	rest := s[1:]

	if strings.HasPrefix(rest, "/") {
		end := strings.IndexByte(rest, ',')
		if end < 0 {
			p.Namespace = rest
			return p, nil
		}
		p.Namespace, rest = rest[:end], rest[end+1:]
	}

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	p.AckID, rest = rest[:i], rest[i:]

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return socketPacket{}, fmt.Errorf("%w: invalid json", errMalformed)
		}
		p.Data = json.RawMessage(rest)
	}
	return p, nil
}

// eventOf splits an event packet's data into its name and first argument.
func eventOf(data json.RawMessage) (string, json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil || len(args) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", errMalformed)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", errMalformed, err)
	}
	if len(args) > 1 {
		return name, args[1], nil
	}
	return name, nil, nil
}

// connectPacket is the namespace connect packet with the auth payload.
func connectPacket(token string) (string, error) {
	if token == "" {
		return string([]byte{engineMessage, socketConnect}), nil
	}
	auth, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", err
	}
	return string([]byte{engineMessage, socketConnect}) + string(auth), nil
}

// connectError extracts the message of a connect error packet.
func connectError(data json.RawMessage) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return string(data)
}
