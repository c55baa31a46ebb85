package models

import "fmt"

// Course identifies one of the three dishes on the board.
type Course string

const (
	Starter Course = "starter"
	Main    Course = "main"
	Dessert Course = "dessert"
)

// Courses lists the courses in display order.
func Courses() []Course { return []Course{Starter, Main, Dessert} }

// Title is the section heading shown above the dish.
func (c Course) Title() string {
	switch c {
	case Starter:
		return "Forrett"
	case Main:
		return "Hovedrett"
	case Dessert:
		return "Dessert"
	default:
		return string(c)
	}
}

// ParseCourse validates a course name.
func ParseCourse(s string) (Course, error) {
	switch c := Course(s); c {
	case Starter, Main, Dessert:
		return c, nil
	default:
		return "", fmt.Errorf("unknown course %q", s)
	}
}
