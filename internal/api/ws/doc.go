// Package ws serves terminal sessions over WebSocket.
//
// Protocol:
//   - GET /socket/:shell upgrades the connection; /socket uses the default
//     interpreter, and unknown names fall back to it as well
//   - The server sends exactly one text frame with the version banner, or
//     closes immediately when the interpreter cannot be probed
//   - Each inbound text frame is one command and yields exactly one text
//     frame in reply
//   - "exit" closes the connection without a reply
//   - "cd <path>" changes the session directory
//   - Binary frames are logged and ignored
//
// Example Usage:
//
//	handler := ws.NewHandler(ws.Config{WorkDir: root}, registry, executor, manager, logger, metrics)
//	router.GET("/socket/:shell", handler.HandleConnection)
package ws
