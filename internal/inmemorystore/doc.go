// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the valuestore.Store interface.
//
// One Store is created per simulation run. It uses sync.Map since every node
// writes its own keys at every time step while observers read: the key space
// is fixed once the run starts and values change constantly.
package inmemorystore
