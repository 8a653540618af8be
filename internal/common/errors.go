// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки пайплайна скачивания
var (
	// ErrMirrorTimeout — wget не уложился в дедлайн и был убит
	ErrMirrorTimeout = errors.New("download timeout")
	// ErrMirrorFailed — wget завершился с ненулевым кодом
	ErrMirrorFailed = errors.New("mirror failed")
	// ErrEmptyMirror — сайт не отдал ни одного файла
	ErrEmptyMirror = errors.New("site produced no retrievable content")
)

// Ошибки сессий
var (
	// ErrBusy — в этом чате уже идёт скачивание
	ErrBusy = errors.New("download already in progress for this chat")
	// ErrNoURL — нажата кнопка, а URL в сессии уже нет
	ErrNoURL = errors.New("no url in session")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("only admin can use this command")
	// ErrBanAdmin — попытка забанить администратора
	ErrBanAdmin = errors.New("cannot ban admin")
	// ErrWrongPassword — неверный пароль админ-панели
	ErrWrongPassword = errors.New("wrong password")
	// ErrSaveFailed — настройки не записались на диск, мутация потеряна
	ErrSaveFailed = errors.New("save failed")
)
