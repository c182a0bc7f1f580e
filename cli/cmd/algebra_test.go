package cmd

import "testing"

func TestDiffIntersect(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.yaml", "a: 1\nb: 2\nn: {x: 1, y: 2}\n")
	right := writeFile(t, dir, "right.yaml", "a: 1\nb: 3\nn: {x: 1, y: 5}\nc: 4\n")

	tests := []struct {
		name      string
		intersect bool
		recursive bool
		want      string
	}{
		{"diff", false, false, `{"b":3,"n":{"x":1,"y":5},"c":4}`},
		{"diff recursive", false, true, `{"b":3,"n":{"y":5},"c":4}`},
		{"intersect", true, false, `{"a":1}`},
		{"intersect recursive", true, true, `{"a":1,"n":{"x":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := capture(t)

			o := Operands{Left: left, Right: right, Recursive: tt.recursive, Separator: "."}
			r := Render{Output: "json"}

			var err error
			if tt.intersect {
				err = (&Intersect{Operands: o, Render: r}).Run(ctx)
			} else {
				err = (&Diff{Operands: o, Render: r}).Run(ctx)
			}

			if err != nil {
				t.Fatal(err)
			}

			if got := out.String(); got != tt.want+"\n" {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
