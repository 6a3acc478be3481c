package main

import (
	"maps"
	"slices"

	"github.com/sonirico/neohub"
)

type partitionView struct {
	Number int    `json:"partition_number"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Armed  bool   `json:"armed"`
}

type zoneView struct {
	Number      int    `json:"zone_number"`
	Name        string `json:"name"`
	Open        bool   `json:"open"`
	DeviceClass string `json:"device_class,omitempty"`
	Partitions  []int  `json:"partitions"`
}

type sessionView struct {
	ID         string          `json:"session_id"`
	Name       string          `json:"name"`
	Partitions []partitionView `json:"partitions"`
	Zones      []zoneView      `json:"zones"`
}

// render flattens a snapshot into lists ordered by session id, partition
// number and zone number, with display names filled in.
func render(state neohub.State) []sessionView {
	out := make([]sessionView, 0, len(state))

	for _, id := range state.SessionIDs() {
		sess := state[id]
		view := sessionView{
			ID:         sess.ID,
			Name:       sess.DisplayName(),
			Partitions: make([]partitionView, 0, len(sess.Partitions)),
			Zones:      make([]zoneView, 0, len(sess.Zones)),
		}

		for _, n := range slices.Sorted(maps.Keys(sess.Partitions)) {
			p := sess.Partitions[n]
			view.Partitions = append(view.Partitions, partitionView{
				Number: p.Number,
				Name:   p.DisplayName(),
				Status: string(p.Status),
				Armed:  p.Status.IsArmed(),
			})
		}

		for _, n := range slices.Sorted(maps.Keys(sess.Zones)) {
			z := sess.Zones[n]
			partitions := z.Partitions
			if partitions == nil {
				partitions = []int{}
			}
			view.Zones = append(view.Zones, zoneView{
				Number:      z.Number,
				Name:        z.DisplayName(),
				Open:        z.Open,
				DeviceClass: string(z.DeviceClass),
				Partitions:  partitions,
			})
		}

		out = append(out, view)
	}

	return out
}
