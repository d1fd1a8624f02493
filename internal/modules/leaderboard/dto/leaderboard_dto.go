package dto

import commonDto "paceline.app/community/pkg/dto"

type Demographics struct {
	Gender   string `form:"gender" binding:"omitempty,max=20"`
	AgeGroup string `form:"age_group" binding:"omitempty,oneof=18-29 30-39 40-49 50-59 60+"`
}

// YearlyDistanceQuery defaults Year to the current year.
type YearlyDistanceQuery struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=2100"`
	Demographics
	commonDto.PageQuery
}

type BestTimeQuery struct {
	Category string `form:"category" binding:"required,max=10"`
	Demographics
	commonDto.PageQuery
}
