// Package notify pushes constellation views to subscribers over NATS.
//
// A Watcher observes the gardens directory and the letters file, rebuilds
// the view after a quiet period and hands it to a Publisher, which sends
// the JSON snapshot on a NATS subject. The HTTP stream endpoint subscribes
// to the same subject.
package notify
