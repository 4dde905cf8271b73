// Package chat implements the chat message type carried in packet
// payloads.
//
// A chat message is a JSON text component: a string, a list of components,
// or an object with "text", "extra" and formatting keys such as "color" and
// "bold". On the wire it is a protocol string holding the serialized JSON,
// so Message implements protocol.BufferMarshaler and
// protocol.BufferUnmarshaler:
//
//	data, _ := protocol.PackMsg(chat.FromString("§aWelcome"))
//
//	var m chat.Message
//	_ = protocol.NewBuffer(data).UnpackMsg(&m)
//	fmt.Println(m.Render(chat.ModePlain)) // Welcome
//
// Legacy section-sign codes (§ followed by 0-9, a-f, k-o or r) are kept,
// stripped or translated to terminal escapes depending on the Mode.
package chat
