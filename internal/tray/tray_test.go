package tray

import (
	"testing"

	"github.com/google/uuid"
)

func TestClassifyCallback(t *testing.T) {
	tests := []struct {
		name     string
		lParam   uintptr
		version4 bool
		want     trayAction
	}{
		{name: "context menu v4", lParam: wmContextMenu, version4: true, want: actionMenu},
		{name: "context menu legacy", lParam: wmContextMenu, want: actionMenu},
		{name: "right button up legacy", lParam: wmRButtonUp, want: actionMenu},
		{name: "right button up v4 ignored", lParam: wmRButtonUp, version4: true, want: actionNone},
		{name: "double click", lParam: wmLButtonDblClk, version4: true, want: actionOpenFolder},
		{name: "high word carries icon id", lParam: 1<<16 | wmLButtonDblClk, version4: true, want: actionOpenFolder},
		{name: "mouse move", lParam: 0x0200, want: actionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyCallback(tt.lParam, tt.version4); got != tt.want {
				t.Fatalf("classifyCallback(%#x, %v) = %v, want %v", tt.lParam, tt.version4, got, tt.want)
			}
		})
	}
}

func TestContextMenuLayout(t *testing.T) {
	if len(contextMenu) != 3 {
		t.Fatalf("len(contextMenu) = %d, want 3", len(contextMenu))
	}
	if contextMenu[0].label != MenuOpenFolder || contextMenu[0].cmd != commandOpenFolder {
		t.Fatalf("first item = %+v", contextMenu[0])
	}
	if !contextMenu[1].separator {
		t.Fatalf("second item = %+v, want separator", contextMenu[1])
	}
	if contextMenu[2].label != MenuExit || contextMenu[2].cmd != commandExit {
		t.Fatalf("last item = %+v", contextMenu[2])
	}
}

func TestEventsRun(t *testing.T) {
	var opened, exited int
	ev := Events{
		OpenFolder: func() { opened++ },
		Exit:       func() { exited++ },
	}
	ev.run(commandOpenFolder)
	ev.run(commandExit)
	ev.run(commandNone)
	if opened != 1 || exited != 1 {
		t.Fatalf("opened=%d exited=%d, want 1 and 1", opened, exited)
	}

	Events{}.run(commandExit)
}

func TestIconGUID(t *testing.T) {
	a := IconGUID(`C:\Tools\LangTray\langtray.exe`)
	b := IconGUID(`c:\tools\langtray\LANGTRAY.EXE`)
	c := IconGUID(`D:\Other\langtray.exe`)
	if a != b {
		t.Fatalf("IconGUID differs by case: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("IconGUID must differ between paths")
	}
	if a.Version() != 5 {
		t.Fatalf("IconGUID version = %d, want 5", a.Version())
	}
}

func TestGUIDBytes(t *testing.T) {
	u := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	want := [16]byte{0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if got := guidBytes(u); got != want {
		t.Fatalf("guidBytes() = % x, want % x", got, want)
	}
}
