package ws

import (
	"encoding/json"
	"fmt"

	"kiwoombot/internal/broker"
	"kiwoombot/internal/models"
)

const (
	frameLogin  = "LOGIN"
	framePing   = "PING"
	frameReg    = "REG"
	frameReal   = "REAL"
	frameSystem = "SYSTEM"
)

const fatalSystemCode = "R10004"

type envelope struct {
	Trnm string `json:"trnm"`
}

type loginFrame struct {
	Trnm  string `json:"trnm"`
	Token string `json:"token"`
}

type ackFrame struct {
	Trnm       string `json:"trnm"`
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
}

type regFrame struct {
	Trnm    string      `json:"trnm"`
	GrpNo   string      `json:"grp_no"`
	Refresh string      `json:"refresh"`
	Data    []regTarget `json:"data"`
}

type regTarget struct {
	Item []string `json:"item"`
	Type []string `json:"type"`
}

type realFrame struct {
	Trnm string            `json:"trnm"`
	Data []json.RawMessage `json:"data"`
}

type systemFrame struct {
	Trnm    string `json:"trnm"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func frameKind(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("Не удалось разобрать кадр: %w", err)
	}
	return env.Trnm, nil
}

func encodeLogin(token string) ([]byte, error) {
	return json.Marshal(loginFrame{Trnm: frameLogin, Token: token})
}

func encodeReg(sub models.Subscription) ([]byte, error) {
	refresh := "N"
	if sub.Refresh {
		refresh = "Y"
	}
	return json.Marshal(regFrame{
		Trnm:    frameReg,
		GrpNo:   sub.GroupNo,
		Refresh: refresh,
		Data: []regTarget{{
			Item: []string{sub.AccountNo},
			Type: []string{sub.TypeCode},
		}},
	})
}

func decodeAck(data []byte) (ackFrame, error) {
	var ack ackFrame
	if err := json.Unmarshal(data, &ack); err != nil {
		return ackFrame{}, fmt.Errorf("Не удалось разобрать ответ: %w", err)
	}
	return ack, nil
}

func decodeSystem(data []byte) (systemFrame, error) {
	var sys systemFrame
	if err := json.Unmarshal(data, &sys); err != nil {
		return systemFrame{}, fmt.Errorf("Не удалось разобрать SYSTEM кадр: %w", err)
	}
	return sys, nil
}

func decodeRealData(data []byte) ([]json.RawMessage, error) {
	var frame realFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("Не удалось разобрать REAL кадр: %w", err)
	}
	return frame.Data, nil
}

func decodeRecord(raw json.RawMessage) (broker.RealtimeRecord, error) {
	var rec broker.RealtimeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return broker.RealtimeRecord{}, fmt.Errorf("Не удалось разобрать запись REAL: %w", err)
	}
	rec.Raw = raw
	return rec, nil
}
