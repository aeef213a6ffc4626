package muxschema

import (
	"golang.org/x/net/websocket"

	"github.com/vitalvas/muxschema/model"
)

// ReceiveAs reads one JSON message from the connection and loads it as the
// given model (an instance or a reflect.Type). Wire keys decamelize when
// casing conversion is on.
func (s *Spec) ReceiveAs(conn *websocket.Conn, m any) (any, error) {
	var raw any
	if err := websocket.JSON.Receive(conn, &raw); err != nil {
		return nil, err
	}
	return model.Load(raw, typeOf(m), model.LoadOptions{
		Decamelize: s.cfg.ConvertCasing,
		Preference: s.cfg.Preference,
	})
}

// SendAs validates value against the given model, dumps it and writes it
// as one JSON message. Mappings are coerced through the model first, so a
// value that does not fit is rejected before anything hits the wire.
func (s *Spec) SendAs(conn *websocket.Conn, value any, m any) error {
	loaded, err := model.Load(value, typeOf(m), model.LoadOptions{Preference: s.cfg.Preference})
	if err != nil {
		return err
	}
	dumped, err := model.Dump(loaded, model.DumpOptions{
		Camelize:   s.cfg.ConvertCasing,
		Preference: s.cfg.Preference,
	})
	if err != nil {
		return err
	}
	return websocket.JSON.Send(conn, dumped)
}
