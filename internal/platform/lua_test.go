package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable(t *testing.T) {
	tests := []struct {
		name string
		info *Info
		code string
		want lua.LValue
	}{
		{"os_tag windows", &Info{OS: "windows"}, `return platform.os_tag`, lua.LString("win")},
		{"exe_suffix windows", &Info{OS: "windows"}, `return platform.exe_suffix`, lua.LString(".exe")},
		{"os_tag darwin", &Info{OS: "darwin"}, `return platform.os_tag`, lua.LString("mac")},
		{"is_linux", &Info{OS: "linux"}, `return platform.is_linux`, lua.LTrue},
		{"is_windows on linux", &Info{OS: "linux"}, `return platform.is_windows`, lua.LFalse},
		{"distro nil", &Info{OS: "darwin"}, `return platform.distro`, lua.LNil},
		{
			"distro family",
			&Info{OS: "linux", Platform: "fedora", Family: FamilyFedora},
			`return platform.distro.family`,
			lua.LString("fedora"),
		},
		{"when true", &Info{OS: "linux"}, `return platform.when(platform.is_linux, "chrome")`, lua.LString("chrome")},
		{"when false", &Info{OS: "linux"}, `return platform.when(platform.is_macos, "chrome")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := lua.NewState()
			defer L.Close()

			if err := InjectPlatformTable(L, tt.info); err != nil {
				t.Fatalf("InjectPlatformTable() error = %v", err)
			}
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("DoString() error = %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)

			if got.Type() != tt.want.Type() || got.String() != tt.want.String() {
				t.Errorf("got %v (%v), want %v (%v)", got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestInjectPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	for _, code := range []string{
		`platform.os = "windows"`,
		`platform.new_field = 1`,
		`setmetatable(platform, {})`,
	} {
		if err := L.DoString(code); err == nil {
			t.Errorf("expected error for %q", code)
		}
	}
}
