package repository

import (
	"github.com/duynhne/loaner-service/internal/core/domain"
)

var (
	_ domain.UserRepository      = (*PgxUserRepository)(nil)
	_ domain.EquipmentRepository = (*PgxEquipmentRepository)(nil)
	_ domain.BookingRepository   = (*PgxBookingRepository)(nil)
	_ domain.UserRepository      = (*MemoryUserRepository)(nil)
	_ domain.EquipmentRepository = (*MemoryEquipmentRepository)(nil)
	_ domain.BookingRepository   = (*MemoryBookingRepository)(nil)
)
