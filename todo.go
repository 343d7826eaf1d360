/*
	Project: Shule - timetabling, attendance & internal assessment for secondary schools
*/
package shule

/*
TODO: admin: upload CSV to bulk create students & enrollments
TODO: persist the chosen substitute on a slot (suggestions only for now)

FE:
	- Teacher Dashboard
		* weekly timetable grid (navigate weeks, filter by year/semester)
		* take attendance from a grid cell & confirm the register
		* record marks per exam session
	- Admin Site
		* manage teachers, sections, subjects, assignments & slots
		* attendance / CIE reports per section & per teacher

------------------------------------ Version X ----------------------------------------
FIXME:Edge-case:
- team teaching: two assignments sharing a (teacher, day, period) cell ??? the grid keeps one
- semester rollover mid-week: the anchor date decides, a grid can straddle two terms

TODO: per-school configuration (periods, break rows, thresholds) instead of env defaults
TODO: exam weighting (IA vs practicals) when computing CIE ??
*/
