// Package chatgateway implements the chat-gateway service which fronts
// realtime voice/video AI chat sessions and branching conversation storage.
//
// The service provides:
//   - Realtime session lifecycle management (create, get, list, delete)
//   - PCM16 audio bridging, mute controls and 1 fps video frame sampling
//   - WebRTC and WebSocket provider transports
//   - Branching conversation storage with per-message alternatives
//   - Conversation export in JSON, Markdown, CSV, TXT, PDF and DOCX
//   - JWT authentication via a JWKS-backed identity provider
package chatgateway
