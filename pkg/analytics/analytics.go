// Package analytics summarises a task collection for the dashboard.
package analytics

import (
	"time"

	"tableflip.dev/taskverse/pkg/task"
)

// WeekDays are the labels used for weekly buckets, indexed by time.Weekday.
var WeekDays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayCount is one day of the weekly completion chart.
type DayCount struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
}

// Summary aggregates counts over a task collection.
type Summary struct {
	TotalTasks       int            `json:"totalTasks"`
	CompletedTasks   int            `json:"completedTasks"`
	PendingTasks     int            `json:"pendingTasks"`
	CompletionRate   float64        `json:"completionRate"`
	CategoryCounts   map[string]int `json:"categoryCounts"`
	WeeklyCompletion []DayCount     `json:"weeklyCompletion"`
}

// Compute builds a Summary. The weekly chart covers the seven UTC days ending
// on now, oldest first. A completed task counts on the day it was last
// updated.
func Compute(tasks []task.Task, now time.Time) Summary {
	s := Summary{
		TotalTasks:     len(tasks),
		CategoryCounts: make(map[string]int),
	}
	for _, t := range tasks {
		if t.Completed() {
			s.CompletedTasks++
		}
		if t.Category != "" {
			s.CategoryCounts[t.Category]++
		}
	}
	s.PendingTasks = s.TotalTasks - s.CompletedTasks
	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	}

	today := now.UTC()
	s.WeeklyCompletion = make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		bucket := DayCount{
			Day:  WeekDays[day.Weekday()],
			Date: day.Format("2006-01-02"),
		}
		for _, t := range tasks {
			if t.Completed() && t.UpdatedAt.SameDay(day) {
				bucket.Completed++
			}
			if t.CreatedAt.SameDay(day) {
				bucket.Created++
			}
		}
		s.WeeklyCompletion = append(s.WeeklyCompletion, bucket)
	}
	return s
}
