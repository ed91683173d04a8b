package models

import "time"

// SnapshotInfo represents metadata about a saved canvas snapshot.
type SnapshotInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Size           int64     `json:"size"` // encoded bytes
	ContainerCount int       `json:"containerCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Snapshot is a saved copy of a container map. Containers are ordered so that
// every parent precedes its children.
type Snapshot struct {
	Info       SnapshotInfo `json:"info"`
	Containers []Container  `json:"containers"`
}
