package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	sessionFormatVersionCurrent = 2
	sessionFormatVersionV1      = 1
)

// Encode serializes a session into the compact binary wire format used by
// Redis-backed registries. The token itself is the storage key and is not
// part of the payload.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if err := binary.Write(&buf, binary.BigEndian, s.UserID); err != nil {
		return nil, err
	}

	if len(s.Username) > 255 {
		return nil, errors.New("username too long")
	}
	buf.WriteByte(byte(len(s.Username)))
	buf.WriteString(s.Username)

	if len(s.Role) > 255 {
		return nil, errors.New("role too long")
	}
	buf.WriteByte(byte(len(s.Role)))
	buf.WriteString(s.Role)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LastActivity); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a binary session payload. V1 payloads lack the LastActivity
// field; it is backfilled from CreatedAt.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent && version != sessionFormatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	if err := binary.Read(reader, binary.BigEndian, &s.UserID); err != nil {
		return nil, err
	}

	usernameLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	username := make([]byte, usernameLen)
	if _, err := io.ReadFull(reader, username); err != nil {
		return nil, err
	}
	s.Username = string(username)

	roleLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	role := make([]byte, roleLen)
	if _, err := io.ReadFull(reader, role); err != nil {
		return nil, err
	}
	s.Role = string(role)

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	if version == sessionFormatVersionCurrent {
		if err := binary.Read(reader, binary.BigEndian, &s.LastActivity); err != nil {
			return nil, err
		}
	} else {
		s.LastActivity = s.CreatedAt
	}

	return s, nil
}
