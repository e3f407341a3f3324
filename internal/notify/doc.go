// Package notify forwards scene notifications to observers outside the
// process: "has been modified", selection changes, history stamps and
// evaluations.
//
// A Sink receives Events. Attach wires the listeners of a scene to a Sink.
// LogSink writes events to a slog logger and SocketIOSink publishes them to a
// socket.io server.
package notify
